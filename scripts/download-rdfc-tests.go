//go:build ignore

package main

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// testSuite is a test suite published as a GitHub archive.
type testSuite struct {
	name        string
	description string
	url         string
	subdir      string // directory inside the archive to extract
}

var testSuites = []testSuite{
	{
		name:        "rdfc",
		description: "W3C RDF Dataset Canonicalization Test Suite",
		url:         "https://github.com/w3c/rdf-canon/archive/refs/heads/main.zip",
		subdir:      "tests",
	},
	{
		name:        "jsonld-tordf",
		description: "W3C JSON-LD toRdf tests",
		url:         "https://github.com/w3c/json-ld-api/archive/refs/heads/main.zip",
		subdir:      "tests/toRdf",
	},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <output-directory>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nDownloads the canonicalization test suites. The directory will hold:\n")
		fmt.Fprintf(os.Stderr, "  <output-directory>/rdfc/          manifest.jsonld, rdfc10/testNNN-in.nq\n")
		fmt.Fprintf(os.Stderr, "  <output-directory>/jsonld-tordf/  NNNN-in.jsonld, NNNN-out.nq\n")
		os.Exit(1)
	}

	outputDir := os.Args[1]
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	failed := false
	for _, suite := range testSuites {
		fmt.Printf("Downloading %s...\n", suite.description)
		n, err := downloadTestSuite(suite, outputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error downloading %s: %v\n", suite.name, err)
			failed = true
			continue
		}
		fmt.Printf("  extracted %d files\n", n)
	}
	if failed {
		os.Exit(1)
	}
	fmt.Printf("\nSet RDFC_TESTS_DIR=%s to run conformance tests.\n", outputDir)
}

func downloadTestSuite(suite testSuite, outputDir string) (int, error) {
	tmp, err := os.CreateTemp("", suite.name+"-*.zip")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	resp, err := http.Get(suite.url)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return 0, fmt.Errorf("save download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	return extractZip(tmp.Name(), filepath.Join(outputDir, suite.name), suite.subdir)
}

func extractZip(zipFile, destDir, subdir string) (int, error) {
	r, err := zip.OpenReader(zipFile)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	count := 0
	marker := subdir + "/"
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		idx := strings.Index(f.Name, marker)
		if idx < 0 {
			continue
		}
		relPath := f.Name[idx+len(marker):]
		if relPath == "" || strings.Contains(relPath, "..") {
			continue
		}

		destPath := filepath.Join(destDir, relPath)
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return count, err
		}
		if err := copyZipFile(f, destPath); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func copyZipFile(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
