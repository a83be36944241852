// Package cli drives a flow session interactively over text streams.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/velora-app/flowengine"
	"github.com/velora-app/flowengine/internal/runtime"
)

// RunOptions configures an interactive run.
type RunOptions struct {
	// Pacing is the inter-message delay. Zero disables it.
	Pacing time.Duration
	// SessionOptions are forwarded to the session (adapters, hooks...).
	SessionOptions []flowengine.SessionOption
}

// RunSession executes the flow interactively: agent messages go to out,
// and whenever the flow suspends for input, a line is read from in.
// Synthesis suspensions resolve immediately since a text terminal has no
// audio pipeline.
func RunSession(ctx context.Context, eng *flowengine.Engine, in io.Reader, out io.Writer, opts RunOptions) error {
	sink := flowengine.SinkFunc(func(msg flowengine.Message) {
		fmt.Fprintf(out, "[%s] %s\n", msg.Sender, msg.Content)
	})

	sessOpts := append([]flowengine.SessionOption{
		flowengine.WithPacing(opts.Pacing),
	}, opts.SessionOptions...)
	sess := eng.NewSession(sink, sessOpts...)

	if err := sess.Start(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for !sess.Terminated() {
		susp := sess.Suspended()
		if susp == nil {
			break
		}

		switch susp.Reason {
		case runtime.ReasonUserInput, runtime.ReasonTranscript:
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return err
				}
				return fmt.Errorf("input stream closed while waiting for a response")
			}
			if err := sess.SubmitUserResponse(ctx, scanner.Text()); err != nil {
				return err
			}
		case runtime.ReasonSynthesis:
			if err := sess.NotifySynthesisComplete(ctx); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected suspension reason %q", susp.Reason)
		}
	}

	return nil
}
