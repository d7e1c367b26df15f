package cardflow_test

import (
	"context"
	"fmt"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/pkg/adapters/memory"
	"github.com/aretw0/cardflow/pkg/domain"
)

// Example drives a complete replacement dialogue with scripted answers.
func Example() {
	dir := memory.NewDirectory()
	dir.SeedUser("demo",
		domain.Card{ID: "1234", Product: "Platinum Visa", Address: "1 Blossom Way, Springfield"},
	)

	eng, err := cardflow.New(dir)
	if err != nil {
		fmt.Println(err)
		return
	}

	ctx := context.Background()
	state := eng.NewSession("demo")

	answers := []string{"lost", "yes", "confirm"}
	for _, answer := range answers {
		var done bool
		state, done = eng.Decide(ctx, state)
		if done {
			break
		}
		state = eng.Reduce(ctx, state, answer)
	}
	state, _ = eng.Decide(ctx, state)

	fmt.Println(state.Outcome)
	fmt.Println(state.Prompt)
	// Output:
	// completed
	// Card ending 1234 cancelled successfully. A replacement card will be delivered to 1 Blossom Way, Springfield within 5-7 business days.
}
