/*
Package domain contains the core domain models for the flowengine.

It defines the fundamental entities of the conversational flow interpreter:
the flow Graph (nodes and edges authored per tenant), the per-session
conversation Context, and the Message effects emitted towards the host.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Graph: The immutable set of typed nodes and directed edges of one flow.
  - Node: A typed unit of conversation behavior (message, input, condition, ...).
  - Edge: A directed connection between nodes, optionally labeled with a
    source handle (output port) for multi-way branching.
  - Context: The runtime snapshot of a session (variables, cursor,
    processed-node set). Treated as an immutable value.
  - Message: A structural representation of what the host should render
    or persist. The engine never renders.
*/
package domain
