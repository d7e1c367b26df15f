/*
Package cardflow is a turn-based dialogue controller that walks a user through
replacing a payment card: collecting a reason, selecting among multiple cards,
confirming or updating the delivery address, obtaining final confirmation, and
executing the replacement.

The core is a pair of pure-ish functions over an explicit session state. The
decision engine maps accumulated state to the next prompt, and the input
reducer folds a raw user utterance back into that state based on what was last
asked. Account data lives behind the ports.Directory interface, so any backend
(in-memory, SQLite, a real issuer API) can be plugged in.

# Usage

	package main

	import (
		"context"
		"bufio"
		"fmt"
		"os"

		"github.com/aretw0/cardflow"
		"github.com/aretw0/cardflow/pkg/adapters/memory"
		"github.com/aretw0/cardflow/pkg/domain"
	)

	func main() {
		dir := memory.NewDirectory()
		dir.SeedUser("alice",
			domain.Card{ID: "1234", Product: "Platinum Visa", Address: "1 Blossom Way"},
		)

		eng, _ := cardflow.New(dir)
		state := eng.NewSession("alice")

		ctx := context.Background()
		in := bufio.NewScanner(os.Stdin)

		// Main loop: Decide -> print prompt -> read input -> Reduce
		for {
			var done bool
			state, done = eng.Decide(ctx, state)
			fmt.Println(state.Prompt)
			if done {
				break
			}
			if !in.Scan() {
				break
			}
			state = eng.Reduce(ctx, state, in.Text())
		}
	}

The pkg/runner package packages this loop with renderer and logger support,
and the HTTP and MCP adapters expose the same contract to remote drivers.
*/
package cardflow
