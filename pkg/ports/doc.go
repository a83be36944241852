/*
Package ports defines the driven ports (interfaces) for the flowengine.

These interfaces decouple the engine core from external implementations:
AI, TTS and STT providers, business backends, message rendering and session
persistence. The core has zero I/O of its own and is exercised with fakes
in unit tests.

# Key Interfaces

  - AIResponder, Synthesizer, InputHost: provider contracts for the
    ai-response, tts and stt/input node types.
  - BusinessAction: side-effecting business operations (e.g. appointment
    rescheduling) with port-based outcome routing.
  - MessageSink: the only channel through which emitted messages reach
    rendering or persistence.
  - StateStore: session snapshot persistence (memory, Redis).
  - GraphSource: yields an already-deserialized flow graph.
*/
package ports
