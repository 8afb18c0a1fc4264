// Package executor provides the command execution core of the server.
//
// Every tool call ends up here: the arguments are checked by the Validator,
// then the Executor acquires an admission slot, spawns the external
// container binary with separately captured stdout and stderr, registers the
// process handle, waits for it racing the effective timeout, and always
// deregisters the handle and releases the slot on the way out.
//
// A non-zero exit code is reported as a normal Result. Only validation
// failures, timeouts and spawn or communication failures come back as
// errors, typed as *Error and matched with errors.Is against
// ErrInvalidArgument, ErrTimeout and ErrExecutionFailure.
//
// Usage:
//
//	exec := executor.New(logger, executor.DefaultConfig())
//	result, err := exec.Execute(ctx, executor.Request{Args: []string{"list", "--all"}})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Format())
//
//	exec.Shutdown(30 * time.Second)
package executor
