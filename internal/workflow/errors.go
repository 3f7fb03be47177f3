package workflow

import "errors"

// ErrNoFund indicates an operation that requires a fund ran before one
// was created.
var ErrNoFund = errors.New("no fund has been set up")

// ErrNoBills indicates the generate pipeline ran on a fund with no bills.
var ErrNoBills = errors.New("no bills have been added")

// ErrNoActiveInstances indicates no bill has an upcoming instance inside
// the planning window, so there is nothing to build envelopes for.
var ErrNoActiveInstances = errors.New("no bill instances in the planning period")

// ErrNoAllocationStrategy indicates generate ran before an allocation
// strategy was selected.
var ErrNoAllocationStrategy = errors.New("no allocation strategy selected")

// ErrNoSchedulerStrategy indicates generate ran before a scheduler
// strategy was selected.
var ErrNoSchedulerStrategy = errors.New("no scheduler strategy selected")
