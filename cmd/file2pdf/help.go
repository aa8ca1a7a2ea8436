package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: file2pdf [convert] [flags] <source>")
	fmt.Fprintln(w, "       file2pdf <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Print an HTML or Markdown file to PDF (default)")
	fmt.Fprintln(w, "  doctor     Check geckodriver, Firefox and the environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'file2pdf help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: file2pdf convert [flags] <source>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print a local file to PDF through geckodriver and Firefox.")
	fmt.Fprintln(w, "Markdown sources (.md, .markdown) are rendered to HTML first.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -s, --source-file <path>     File to print (or pass it as argument)")
	fmt.Fprintln(w, "  -o, --out-file <path>        Output PDF path")
	fmt.Fprintln(w, "  -u, --update-extension       Write <source>.pdf next to the source")
	fmt.Fprintln(w, "                               Without -o or -u the PDF goes to stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "  -g, --geckodriver-path <p>   geckodriver executable (default geckodriver)")
	fmt.Fprintln(w, "      --port <n>               geckodriver port (0 = pick a free port)")
	fmt.Fprintln(w, "      --headed                 Show the Firefox window")
	fmt.Fprintln(w, "      --startup-delay <d>      Wait before the first readiness probe")
	fmt.Fprintln(w, "      --ready-timeout <d>      Readiness polling budget (0 = fixed delay only)")
	fmt.Fprintln(w, "      --leakless               Kill geckodriver even if file2pdf crashes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>          Config name or path (.yaml, .yml, .toml)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                  Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                Show debug logs and geckodriver output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  FILE2PDF_CONFIG, FILE2PDF_GECKODRIVER, FILE2PDF_PORT, FILE2PDF_LOG")
	fmt.Fprintln(w, "  Precedence: flags > environment > config file > defaults")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: file2pdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that geckodriver and Firefox can be found and the system")
	fmt.Fprintln(w, "can run a conversion.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json    Print the report as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	if !isCommand(args[0]) {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: file2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: file2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	}
	return ExitSuccess
}
