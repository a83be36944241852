/*
Package flowengine executes conversational flows defined as directed
graphs of typed nodes.

A flow is a graph of message, input, condition, speech and business
action nodes wired by labeled edges. The engine walks the graph,
emitting messages to a host-provided sink, suspending whenever it needs
something from the outside world (user text, a transcript, speech
playback) and resuming when the host delivers it. Session state is an
immutable context of variables, so every step can be snapshotted and
persisted mid-conversation.

This Hexagonal Architecture keeps the core free of I/O: hosts plug in
adapters for AI text generation, speech synthesis, input capture and
tenant business actions, and choose a state store (in-memory or Redis)
for persistence.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/velora-app/flowengine"
	)

	func main() {
		eng, err := flowengine.NewFromFile("flows/greeting.yaml")
		if err != nil {
			log.Fatal(err)
		}

		sink := flowengine.SinkFunc(func(msg flowengine.Message) {
			fmt.Printf("[%s] %s\n", msg.Sender, msg.Content)
		})

		sess := eng.NewSession(sink)
		ctx := context.Background()
		if err := sess.Start(ctx); err != nil {
			log.Fatal(err)
		}

		// Main loop: whenever the session suspends waiting for input,
		// collect it from the user and resume.
		for !sess.Terminated() {
			if s := sess.Suspended(); s != nil {
				var text string
				fmt.Scanln(&text)
				if err := sess.SubmitUserResponse(ctx, text); err != nil {
					log.Fatal(err)
				}
			}
		}
	}
*/
package flowengine
