package security

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// FilePolicy describes which uploads a feature accepts
type FilePolicy struct {
	Name       string
	Extensions []string // lowercase, with leading dot
	MaxBytes   int64
	// CheckMagic compares the leading bytes against the extension's signature
	CheckMagic bool
}

// Magic byte signatures for allowed file types
// Maps lowercase extension to possible magic byte prefixes
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}}, // GIF87a & GIF89a
	".webp": {{0x52, 0x49, 0x46, 0x46}},                                                   // RIFF header
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                                                   // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},                           // OLE Compound Document
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                                                   // ZIP (PK..)
}

// RIFF is a container; webp also carries its form type at offset 8
var webpFormType = []byte("WEBP")

const megabyte = 1 << 20

var (
	// ResumePolicy applies to job application uploads
	ResumePolicy = FilePolicy{
		Name:       "resume",
		Extensions: []string{".pdf", ".doc", ".docx"},
		MaxBytes:   5 * megabyte,
		CheckMagic: true,
	}
	// MatchPolicy applies to resume-match uploads. The AI service parses the file itself.
	MatchPolicy = FilePolicy{
		Name:       "resume",
		Extensions: []string{".pdf", ".doc", ".docx"},
		MaxBytes:   10 * megabyte,
	}
	// ImagePolicy applies to profile pictures and post images
	ImagePolicy = FilePolicy{
		Name:       "image",
		Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
		MaxBytes:   5 * megabyte,
		CheckMagic: true,
	}
)

// Validate checks extension, size and (optionally) magic bytes.
// The returned error message is safe to show to clients.
func (p FilePolicy) Validate(filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return fmt.Errorf("%s file has no extension", p.Name)
	}
	if !p.allows(ext) {
		return fmt.Errorf("%s file type %s not allowed; allowed: %s", p.Name, ext, strings.Join(p.sortedExtensions(), ", "))
	}
	if len(data) == 0 {
		return fmt.Errorf("%s file is empty", p.Name)
	}
	if p.MaxBytes > 0 && int64(len(data)) > p.MaxBytes {
		return fmt.Errorf("%s file exceeds %d MB", p.Name, p.MaxBytes/megabyte)
	}
	if p.CheckMagic && !validateMagicBytes(ext, data) {
		return fmt.Errorf("%s file content does not match extension", p.Name)
	}
	return nil
}

func (p FilePolicy) allows(ext string) bool {
	for _, e := range p.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (p FilePolicy) sortedExtensions() []string {
	out := append([]string(nil), p.Extensions...)
	sort.Strings(out)
	return out
}

// validateMagicBytes checks if file content starts with expected magic bytes
func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false // File too small to validate
	}

	signatures, ok := magicBytes[ext]
	if !ok {
		return false
	}

	for _, sig := range signatures {
		if !bytes.HasPrefix(data, sig) {
			continue
		}
		if ext == ".webp" {
			return len(data) >= 12 && bytes.Equal(data[8:12], webpFormType)
		}
		return true
	}

	return false
}
