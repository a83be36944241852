package runtime

import "github.com/velora-app/flowengine/pkg/domain"

// resolveNext selects the targets reachable from nodeID through the given
// output port, preserving edge declaration order.
//
// Without a port, every outgoing edge matches. With a port, only edges
// labeled with that handle match, plus edges with an empty handle, which
// are wildcards; this keeps unlabeled graphs working when nodes gain ports
// later. The driver follows only the first result (first-match tie-break);
// an empty result signals termination of that branch.
func resolveNext(g *domain.Graph, nodeID, port string) []string {
	var targets []string
	for _, e := range g.OutEdges(nodeID) {
		if port != "" && e.SourceHandle != "" && e.SourceHandle != port {
			continue
		}
		targets = append(targets, e.Target)
	}
	return targets
}
