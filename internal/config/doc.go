// Package config provides configuration structures and utilities for the crawler.
// It defines the main configuration options for crawling, report generation,
// and result storage preferences.
package config
