package main

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/khaibq/my-website/linkcheck"
	"github.com/khaibq/my-website/site"
)

// build writes every file of fsys below dir and returns the number of files written.
func build(fsys fs.FS, dir string) (int, error) {
	count := 0
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, b, 0644); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("build: %w", err)
	}
	return count, nil
}

// checkLinks looks for broken links in the HTML of fsys and applies the
// broken link policy of the site to them.
func checkLinks(fsys fs.FS, cfg *site.Config) error {
	broken, err := linkcheck.Check(fsys, cfg.BaseURL)
	if err != nil {
		return err
	}
	if len(broken) == 0 {
		return nil
	}
	return cfg.OnBrokenLinks.Report(log.Printf, linkcheck.Error(broken))
}
