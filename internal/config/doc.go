// Package config provides configuration structures and utilities for seoscan.
// It defines the main configuration options for auditing websites, browser
// pool settings, and report generation preferences.
package config
