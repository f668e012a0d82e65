package failfast

import (
	"errors"
	"os"
	"runtime"

	"osrc/internal/api"
	"osrc/internal/linker"
	"osrc/internal/logger"
	"osrc/internal/prompt"
	"osrc/internal/scope"
	"osrc/internal/session"
)

type ErrorLevel int

const (
	Ignore   ErrorLevel = iota // do nothing, just log
	Warn                       // log a Warning
	Error                      // log an Error and exit with ExitCode
	Critical                   // log a Critical error and exit with ExitCode
	Panic                      // log a Panic error and Panic
)

// ExitCode is the process status for every fatal condition.
const ExitCode = -1

var (
	failfastLogger = logger.PackageLogger("FailFast::", "🚨 FailFast::")

	exit = os.Exit
)

func Failfast(err error, level ErrorLevel, message string) {
	if err == nil {
		return
	}
	pc, file, line, ok := runtime.Caller(1)
	if ok {
		failfastLogger.Debug("%s:%d %s: %v", file, line, runtime.FuncForPC(pc).Name(), err)
	}
	if message == "" {
		message = Message(err)
	}
	switch level {
	case Ignore:
		failfastLogger.Debug("Ignoring error: %s", message)
	case Warn:
		failfastLogger.Warn("%s", message)
	case Error:
		failfastLogger.Error("%s", message)
		exit(ExitCode)
	case Critical:
		failfastLogger.Error("Critical error: %s", message)
		exit(ExitCode)
	case Panic:
		panic(err)
	}
}

// Exit reports err in user terms and terminates the process.
func Exit(err error) {
	Failfast(err, Error, "")
}

// Message turns err into the line shown to the user.
func Message(err error) string {
	var (
		perr   *scope.PermissionError
		parse  *session.ParseError
		remote *api.RemoteError
	)
	switch {
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, session.ErrNotAuthenticated):
		return "please login again, run: osrc login (" + err.Error() + ")"
	case errors.As(err, &parse):
		return "config data error! please login again! (" + parse.Path + ")"
	case errors.As(err, &perr):
		return "You don't have the access to deploy (role " + perr.Role + " in " + perr.Organization + ")"
	case errors.Is(err, scope.ErrNoOrganizations):
		return "You have not joined any organization!"
	case errors.Is(err, linker.ErrCancelled), errors.Is(err, prompt.ErrCancelled):
		return "deploy canceled!"
	case errors.As(err, &remote):
		return remote.Message
	}
	return err.Error()
}
