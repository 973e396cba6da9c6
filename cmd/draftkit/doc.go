// Package main hosts the draftkit CLI entrypoint and command graph.
//
// Each command resolves one project directory (or every project under
// paths.projects_dir with --all), runs an operation from internal/project,
// and prints either a human summary or, with --json, the structured result.
// Configuration, logging, and the edit journal are set up once per
// invocation by commandContext so subcommands only describe their flags and
// output.
//
// Keep this package lean: new editing behaviour belongs in the internal
// packages and is surfaced here as a mutation builder plus a command.
package main
