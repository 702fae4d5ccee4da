package state

import (
	"github.com/lua54vm/core/api"
	"github.com/lua54vm/core/vmerr"
)

// NewThread creates a coroutine sharing this thread's registry (and
// therefore its globals and module cache). Grounded on the teacher's
// one-goroutine-per-coroutine model: a coroutine only gets its own
// goroutine lazily, on first Resume, so creating many idle coroutines
// doesn't cost many goroutines.
func (ls *State) NewThread() api.State {
	t := &State{registry: ls.registry, cfg: ls.cfg}
	t.pushFrame(newStack(ls.cfg.MinStack, t))
	ls.stack.push(t)
	return t
}

// Resume starts or continues a coroutine, blocking the caller (from)
// until the coroutine yields, returns, or errors, via an unbuffered
// rendezvous channel pair per spec §4.4's synchronous-resume model.
func (ls *State) Resume(from api.State, nArgs int) api.Status {
	caller := from.(*State)
	if caller.coChan == nil {
		caller.coChan = make(chan int)
	}

	if ls.coChan == nil {
		ls.coChan = make(chan int)
		ls.closeChan = make(chan struct{})
		ls.coCaller = caller
		go func() {
			defer func() {
				if r := recover(); r != nil {
					ls.coStatus = api.StatusErrRun
				}
				caller.coChan <- 1
			}()
			ls.coStatus = ls.PCall(nArgs, api.MultiRet, 0)
		}()
	} else {
		if ls.coStatus != api.StatusYield {
			ls.stack.push("cannot resume non-suspended coroutine")
			return api.StatusErrRun
		}
		ls.coStatus = api.StatusOK
		ls.coChan <- 1
	}

	<-caller.coChan
	return ls.coStatus
}

// Yield suspends the running coroutine, handing control back to
// whichever Resume call is waiting, and blocks until the next Resume
// or a CloseThread wakes it back up.
func (ls *State) Yield(nResults int) api.Status {
	if ls.coCaller == nil {
		typeErr("yield from outside a coroutine", "thread")
	}
	ls.coStatus = api.StatusYield
	ls.coCaller.coChan <- 1
	select {
	case <-ls.coChan:
		return api.Status(ls.GetTop())
	case <-ls.closeChan:
		vmerr.Raise("coroutine closed")
		return api.StatusOK
	}
}

func (ls *State) IsYieldable() bool {
	if ls.isMainThread() {
		return false
	}
	return ls.coStatus != api.StatusYield
}

func (ls *State) Status() api.Status {
	return ls.coStatus
}

// CloseThread closes a suspended coroutine, releasing its parked
// goroutine without running it to completion. Not present in the
// teacher; added per spec's coroutine.close requirement.
func (ls *State) CloseThread() api.Status {
	if ls.coStatus == api.StatusYield && ls.closeChan != nil {
		close(ls.closeChan)
	}
	ls.coStatus = api.StatusOK
	return api.StatusOK
}

func (ls *State) GetStack() bool {
	return ls.stack.prev != nil
}
