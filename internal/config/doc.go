// Package config manages user-level settings stored at ~/.mountstack/config.yaml.
// It provides functions to load, read, and write configuration keys such as
// the package manager used to run the project generators and the log level.
package config
