package domain

// Reduce applies one normalised transport event to the job. It is the
// single mutation point for transport-driven state: callers serialise
// invocations, so the transition table below is the whole story.
//
// Events are ignored unless the job is in an active state; status never
// moves backward, and a terminal event closes the job until an explicit
// reset.
func Reduce(j *Job, ev Event) {
	if !j.Status.Active() {
		return
	}

	switch ev := ev.(type) {
	case StatusEvent:
		msg := ev.Message
		if msg == "" {
			msg = "Waiting for backend..."
		}
		j.ProgressMessage = msg
		j.AppendLog(msg)

	case ProgressEvent:
		j.ProgressPercent = ClampPercent(ev.Percent)
		if ev.Message != "" {
			j.ProgressMessage = ev.Message
		}

	case PartialEvent:
		j.PartialText += ev.Text

	case MetadataEvent:
		// Idempotent overwrite; redundant delivery is tolerated.
		j.Metadata = &Metadata{QueryFields: ev.Fields, QueryTargets: ev.Targets}
		j.ProgressMessage = "Extracted query fields and targets."

	case WarningEvent:
		j.AppendLog("warning: " + ev.Message)

	case DoneEvent:
		j.Status = StatusDone
		j.ResultLocation = ev.DownloadURL
		j.ProgressPercent = 100
		if ev.Fields != nil || ev.Targets != nil {
			j.Metadata = &Metadata{QueryFields: ev.Fields, QueryTargets: ev.Targets}
		}
		if ev.PreviewHTML != "" {
			j.PreviewHTML = ev.PreviewHTML
		}
		msg := ev.Message
		if msg == "" {
			msg = "Processing complete."
		}
		j.ProgressMessage = msg
		j.AppendLog(msg)

	case ErrorEvent:
		j.Status = StatusError
		j.ErrorDetail = ev.Message
		j.AppendLog("error: " + ev.Message)
	}
}
