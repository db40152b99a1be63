package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Back up personal configuration files into portable archives"
	MsgCompressShort   = "Compress the files described by a backup configuration"
	MsgExtractShort    = "Extract an archive into the current user's home"
	MsgListShort       = "List stored archives"
	MsgListLong        = "List displays every archive in the store, grouped by configuration and timestamp."
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	MsgRootLong = `config-saver backs up the configuration files described by small YAML
specifications into gzip tar archives, rewriting home-relative paths so the
archives restore cleanly for a different user.`

	MsgCompressLong = `Compress resolves the path specifications of a backup configuration,
filters out files the current user should not archive, and writes a gzip
tar archive into the store.

INPUT may be a single YAML configuration or a directory of them; it
defaults to the configured system configs directory. With --description
the archive is placed in the versioned store layout and subsequent runs
are incremental.`

	MsgExtractLong = `Extract unpacks an archive produced by compress. Member paths recorded
against the portable home placeholder are rewritten for the current user's
home directory, as are placeholder tokens inside text files. With --output
the raw member paths are unpacked under the given directory instead.`

	// Status messages
	MsgArchiveWritten    = "Archive written: %s (%d files, %d skipped)\n"
	MsgIncrementalNotice = "Incremental backup: %d changed, %d deleted since the previous version\n"
	MsgExtractDone       = "Extracted %d files from %s\n"
	MsgNothingCompressed = "No configurations were compressed."

	// Error messages
	MsgErrNoInput         = "no input given and no system configs directory is configured"
	MsgErrOutputBatchMode = "--output cannot be used when the input is a directory"
	MsgErrLoadSettings    = "failed to load settings: %w"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagInput       = "YAML configuration or directory of configurations to compress"
	MsgFlagOutput      = "Write the archive to this exact path instead of the store"
	MsgFlagProgress    = "Show a progress bar"
	MsgFlagDescription = "Describe this version; enables the versioned store layout"
	MsgFlagDest        = "Unpack raw member paths under this directory instead of the home"

	MsgCompletionLong = `To load completions:

Bash:
  $ source <(config-saver completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ config-saver completion bash > /etc/bash_completion.d/config-saver

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  # To load completions for each session, execute once:
  $ config-saver completion zsh > "${fpath[1]}/_config-saver"

Fish:
  $ config-saver completion fish | source
  # To load completions for each session, execute once:
  $ config-saver completion fish > ~/.config/fish/completions/config-saver.fish

PowerShell:
  PS> config-saver completion powershell | Out-String | Invoke-Expression
`
)
