/*
Package cli provides command-line utilities for the scrutineer command.

It includes output formatters, exit code conventions, and signal
handling helpers shared by the subcommands.

Output Formatting:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Exit Codes:

The scrutineer command distinguishes a feed that failed validation from
the tool itself failing:

	0  the feed validated without error-severity issues
	1  the feed has validation errors
	2  scrutineer could not run (bad config, unreadable feed or schema)

Signal Handling:

	ctx, stop := cli.SignalContext()
	defer stop()
*/
package cli
