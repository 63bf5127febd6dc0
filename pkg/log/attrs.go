package log

import "log/slog"

func ExecutionID(id string) slog.Attr {
	return slog.String("execution_id", id)
}

func FlowName[T ~string](name T) slog.Attr {
	return slog.String("flow_name", string(name))
}

func StepName(name string) slog.Attr {
	return slog.String("step_name", name)
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}

	return slog.String("error", msg)
}
