package health

import (
	"context"
	"fmt"

	"github.com/mbd888/starknet-mcp/internal/felt"
)

// ChainIDFunc fetches the chain id a node reports.
type ChainIDFunc func(ctx context.Context) (string, error)

// ChainIDChecker probes a node and compares its chain id with want. Ids are
// compared as felts, so 0x534e5f4d41494e and 0x00534E5F4D41494E match.
func ChainIDChecker(name, want string, probe ChainIDFunc) Checker {
	return func(ctx context.Context) Status {
		got, err := probe(ctx)
		if err != nil {
			return Status{Name: name, Healthy: false, Detail: err.Error()}
		}
		if !sameFelt(got, want) {
			return Status{Name: name, Healthy: false, Detail: fmt.Sprintf("chain id %s, expected %s", got, want)}
		}
		return Status{Name: name, Healthy: true, Detail: got}
	}
}

func sameFelt(a, b string) bool {
	x, err := felt.Parse(a)
	if err != nil {
		return false
	}
	y, err := felt.Parse(b)
	if err != nil {
		return false
	}
	return x.Cmp(y) == 0
}
