/*
Package cli provides command-line utilities for the ganymede command.

Output Formatting:

Evaluation reports and run history can be rendered as text, JSON, or CSV:

	format, err := cli.ParseFormat("json")
	if err != nil {
		return err
	}
	if err := cli.WriteReport(os.Stdout, format, report); err != nil {
		return err
	}

Exit Codes:

Commands wrap failures in ExitCodeError so the root command can map a
non-compliant evaluation to exit code 1 and operational errors to 2:

	if report.Failed() {
		return cli.NewExitCodeError(cli.ExitNonCompliant, nil)
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
*/
package cli
