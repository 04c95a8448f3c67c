package contracts

import "context"

type ICommandRunner interface {
	// Run executes args in dir with stdout and stderr passed through
	Run(ctx context.Context, dir string, args []string) error
	// Output executes args in dir and returns what it printed to stdout
	Output(ctx context.Context, dir string, args []string) ([]byte, error)
}
