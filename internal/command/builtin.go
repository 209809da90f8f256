package command

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/mattjoyce/slashgw/internal/interaction"
)

// ErrMissingOption is matched by every *OptionError.
var ErrMissingOption = errors.New("required option missing")

// OptionError reports a required option that was absent or had the wrong type.
type OptionError struct {
	Command string
	Option  string
	Reason  string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("command %q: option %q %s", e.Command, e.Option, e.Reason)
}

// Is makes errors.Is(err, ErrMissingOption) true.
func (e *OptionError) Is(target error) bool {
	return target == ErrMissingOption
}

// DiceFaces is the inclusive upper bound of a dice roll; the lower bound is 1.
const DiceFaces = 6

// Dice rolls a uniform integer in 1..6. Options are ignored.
// A nil rng uses the shared math/rand/v2 source; a non-nil one is
// serialized because *rand.Rand is not safe for concurrent use.
func Dice(rng *rand.Rand) Handler {
	roll := rand.IntN
	if rng != nil {
		var mu sync.Mutex
		roll = func(n int) int {
			mu.Lock()
			defer mu.Unlock()
			return rng.IntN(n)
		}
	}
	return HandlerFunc(func(_ context.Context, _ interaction.Options) (interaction.Response, error) {
		return interaction.ChannelMessage{Content: strconv.Itoa(roll(DiceFaces) + 1)}, nil
	})
}

// Echo replies with the string option "message", verbatim.
func Echo() Handler {
	return HandlerFunc(func(_ context.Context, opts interaction.Options) (interaction.Response, error) {
		opt, ok := opts.Lookup("message")
		if !ok {
			return nil, &OptionError{Command: "echo", Option: "message", Reason: "is missing"}
		}
		msg, ok := opt.String()
		if !ok {
			return nil, &OptionError{Command: "echo", Option: "message", Reason: "is not a string"}
		}
		return interaction.ChannelMessage{Content: msg}, nil
	})
}
