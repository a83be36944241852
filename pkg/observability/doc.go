/*
Package observability provides Prometheus instrumentation for flow
sessions.

It implements the engine's lifecycle hooks, counting node executions,
suspensions and business-action calls, and tracking the number of active
sessions. Wire it into a session with runtime.WithLifecycleHooks and
expose the registry through promhttp.
*/
package observability
