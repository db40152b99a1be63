package normalize

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ContentToken is the textual placeholder substituted for the home directory
// inside normalized file contents.
const ContentToken = "<<<HOME_PLACEHOLDER>>>"

// sniffLen bounds how much of a file is inspected for NUL bytes
const sniffLen = 8192

// binaryExtensions short-circuits content sniffing for well-known binary
// formats: images, fonts, archives, compiled objects, databases, media and
// binary document formats.
var binaryExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {}, ".ico": {},
	".webp": {}, ".tiff": {}, ".tif": {},
	".ttf": {}, ".otf": {}, ".woff": {}, ".woff2": {}, ".eot": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {}, ".7z": {}, ".rar": {},
	".so": {}, ".a": {}, ".o": {}, ".pyc": {}, ".exe": {}, ".dll": {}, ".dylib": {},
	".db": {}, ".sqlite": {}, ".sqlite3": {},
	".mp3": {}, ".mp4": {}, ".avi": {}, ".mkv": {}, ".wav": {}, ".flac": {}, ".ogg": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {},
}

// LooksBinaryName reports whether the file name carries a known binary
// extension. Callers use it to skip content normalization without reading
// the file.
func LooksBinaryName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := binaryExtensions[ext]
	return ok
}

// looksBinaryData reports whether the content appears to be binary.
// A NUL byte in the leading chunk is the signal.
func looksBinaryData(data []byte) bool {
	chunk := data
	if len(chunk) > sniffLen {
		chunk = chunk[:sniffLen]
	}
	return bytes.IndexByte(chunk, 0) >= 0
}

// NormalizeContent replaces literal occurrences of homeDir inside text
// content with ContentToken, preserving the detected encoding (UTF-8 first,
// Latin-1 as fallback). Binary content passes through unmodified. The
// returned bool reports whether a substitution was applied.
func NormalizeContent(data []byte, homeDir string) ([]byte, bool) {
	if len(data) == 0 || looksBinaryData(data) {
		return data, false
	}

	if utf8.Valid(data) {
		text := string(data)
		if !strings.Contains(text, homeDir) {
			return data, false
		}
		return []byte(strings.ReplaceAll(text, homeDir, ContentToken)), true
	}

	// Latin-1 fallback: every byte sequence decodes, so this cannot fail.
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return data, false
	}
	text := string(decoded)
	if !strings.Contains(text, homeDir) {
		return data, false
	}
	replaced := strings.ReplaceAll(text, homeDir, ContentToken)
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(replaced))
	if err != nil {
		// The token is ASCII, so re-encoding only fails when homeDir did;
		// leave the content untouched rather than corrupt it.
		return data, false
	}
	return encoded, true
}

// DenormalizeContent replaces occurrences of ContentToken with the current
// home directory, using the same two-step encoding detection. Content
// without the token (including binary content) passes through unmodified.
func DenormalizeContent(data []byte, currentHomeDir string) []byte {
	if len(data) == 0 || looksBinaryData(data) {
		return data
	}
	// Cheap pre-scan: the token is ASCII, so it appears verbatim in both
	// UTF-8 and Latin-1 encoded bytes.
	if !bytes.Contains(data, []byte(ContentToken)) {
		return data
	}

	if utf8.Valid(data) {
		return []byte(strings.ReplaceAll(string(data), ContentToken, currentHomeDir))
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	replaced := strings.ReplaceAll(string(decoded), ContentToken, currentHomeDir)
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(replaced))
	if err != nil {
		return data
	}
	return encoded
}
