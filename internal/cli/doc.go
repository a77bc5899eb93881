// Package cli defines the Cobra command tree for the mountstack CLI. The root
// command prompts for a destination and runs the scaffolding plan; version
// and config are the only subcommands. Command implementations delegate to
// internal packages and only handle prompting and output.
package cli
