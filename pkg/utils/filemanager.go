// =============================================================================
// Tally Sales XML - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Input sheet discovery
//   - Output naming and writing
//   - Archival of converted sheets
//
// Error and summary logs live in reports.go.
//
// ARCHIVAL STRATEGY:
//   - Input sheets are moved to input_archive after a successful conversion,
//     only when archiving is switched on
//   - Failed or skipped sheets remain in their original location
//   - Error logs are created in the output directory
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultOutputName is the output file name when no template is configured.
const DefaultOutputName = "SalesData.xml"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// InputDir is scanned for sheets when no file is named.
	InputDir string

	// OutputDir receives XML files and error logs.
	OutputDir string

	// InputArchiveDir receives converted sheets.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/sales.xlsx
	UseTimestampSubdirs bool

	// ArchiveOnSuccess determines whether to archive sheets after conversion.
	ArchiveOnSuccess bool
}

// NewFileManager creates a new FileManager with the specified directories.
// Archiving starts switched off.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directory, and the archive directory
// when archiving is on.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.OutputDir}
	if fm.ArchiveOnSuccess {
		dirs = append(dirs, fm.InputArchiveDir)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the files in dir whose extension is one of exts
// (case-insensitive). Subdirectories are not scanned. An empty dir means
// InputDir.
//
// RETURNS:
//   - File paths sorted by name.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles(dir string, exts []string) ([]string, error) {
	if dir == "" {
		dir = fm.InputDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	wanted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		wanted[strings.ToLower(ext)] = true
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "~$") {
			// "~$" files are Excel lock files.
			continue
		}
		if wanted[strings.ToLower(filepath.Ext(entry.Name()))] {
			result = append(result, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// WriteOutput writes data to name inside OutputDir. The file is written to a
// temporary name first and renamed, so a reader never sees a partial file.
//
// RETURNS:
//   - The path of the written file.
func (fm *FileManager) WriteOutput(name string, data []byte) (string, error) {
	if err := os.MkdirAll(fm.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(fm.OutputDir, name)
	tmp, err := os.CreateTemp(fm.OutputDir, ".tmp-*.xml")
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move output file into place: %w", err)
	}

	return path, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input sheet to the archive directory.
//
// RETURNS:
//   - The path to the archived file, or filePath unchanged when archiving
//     is off.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := time.Now()
		subDir := filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
		return filepath.Join(subDir, fileName)
	}

	return filepath.Join(archiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands an output name template.
//
// PARAMETERS:
//   - format: The template. An empty format means DefaultOutputName.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {original}  - Input file name without extension (from params)
//   - params: Extra placeholder values, keyed without braces.
//
// EXAMPLE:
//   format: "Sales_{original}_{date}.xml"
//   params: {"original": "march"}
//   output: "Sales_march_20240115.xml"
func GenerateOutputFileName(format string, params map[string]string) string {
	if format == "" {
		format = DefaultOutputName
	}

	now := time.Now()
	pairs := []string{
		"{uuid}", uuid.New().String(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	}
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", value)
	}

	result := strings.NewReplacer(pairs...).Replace(format)

	if !strings.HasSuffix(strings.ToLower(result), ".xml") {
		result += ".xml"
	}

	return result
}

// OriginalName returns the base name of path without its extension, for the
// {original} placeholder.
func OriginalName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
