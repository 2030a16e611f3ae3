package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.RootDir == "" {
		return errors.New("paths.root_dir must be set")
	}
	if c.Paths.Database == "" {
		return errors.New("paths.database must be set")
	}
	if c.Paths.Database == c.Paths.RootDir {
		return errors.New("paths.database must not point at paths.root_dir")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 0 {
		return errors.New("scan.workers must be >= 0")
	}
	switch c.Scan.FilesystemDate {
	case FilesystemDateModified, FilesystemDateBirth:
	default:
		return fmt.Errorf("scan.filesystem_date: unsupported value %q (use %q or %q)", c.Scan.FilesystemDate, FilesystemDateModified, FilesystemDateBirth)
	}
	if _, err := c.ExifLocation(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// ExifLocation resolves scan.exif_timezone.
func (c *Config) ExifLocation() (*time.Location, error) {
	switch c.Scan.ExifTimezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Scan.ExifTimezone)
	if err != nil {
		return nil, fmt.Errorf("scan.exif_timezone: %w", err)
	}
	return loc, nil
}
