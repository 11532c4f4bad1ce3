package cmd

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const stdStream = "-"

func tablesFromConfig(key string) []string {
	return normalizeTables(viper.GetStringSlice(key))
}

func normalizeTables(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		for _, name := range strings.Split(value, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name != "" {
				result = append(result, name)
			}
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// gzipByName reports whether a backup path should be (de)compressed.
func gzipByName(path string, explicit bool) bool {
	if explicit {
		return true
	}
	return path != stdStream && strings.HasSuffix(strings.ToLower(path), ".gz")
}

type closers []func() error

func (c closers) close(err *error) {
	for _, closer := range c {
		if cerr := closer(); cerr != nil && *err == nil {
			*err = cerr
		}
	}
}

// openBackupWriter returns the writer for path, "-" meaning fallback. Closers run innermost first.
func openBackupWriter(path string, gz bool, fallback io.Writer) (io.Writer, closers, error) {
	var (
		writer = fallback
		cs     closers
	)
	if path != stdStream {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create output directory: %w", err)
		}
		file, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("create backup file: %w", err)
		}
		writer = file
		cs = append(cs, file.Close)
	}
	if gz {
		zw := gzip.NewWriter(writer)
		writer = zw
		cs = append(closers{zw.Close}, cs...)
	}
	return writer, cs, nil
}

// openBackupReader mirrors openBackupWriter for restores.
func openBackupReader(path string, gz bool, fallback io.Reader) (io.Reader, closers, error) {
	var (
		reader = fallback
		cs     closers
	)
	if path != stdStream {
		file, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, nil, fmt.Errorf("open backup file: %w", err)
		}
		reader = file
		cs = append(cs, file.Close)
	}
	if gz {
		zr, err := gzip.NewReader(reader)
		if err != nil {
			cs.close(&err)
			return nil, nil, fmt.Errorf("open gzip stream: %w", err)
		}
		reader = zr
		cs = append(closers{zr.Close}, cs...)
	}
	return reader, cs, nil
}
