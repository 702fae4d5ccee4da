package stdlib

import "github.com/lua54vm/core/api"

var coFuncs = api.FuncReg{
	"create":      coCreate,
	"resume":      coResume,
	"yield":       coYield,
	"status":      coStatus,
	"isyieldable": coYieldable,
	"running":     coRunning,
	"wrap":        coWrap,
	"close":       coClose,
}

// OpenCoroutineLib installs coroutine.*, per spec §5/§6.
func OpenCoroutineLib(ls api.State) int {
	ls.NewLib(coFuncs)
	return 1
}

// coroutine.create (f)
// lua-5.4.4/src/lcorolib.c#luaB_cocreate()
func coCreate(ls api.State) int {
	ls.CheckType(1, api.TypeFunction)
	co := ls.NewThread()
	ls.PushValue(1)
	ls.XMove(co, 1)
	return 1
}

// coroutine.resume (co [, val1, ···])
// lua-5.4.4/src/lcorolib.c#luaB_coresume()
func coResume(ls api.State) int {
	co := ls.ToThread(1)
	ls.ArgCheck(co != nil, 1, "coroutine expected")
	if r := auxResume(ls, co, ls.GetTop()-1); r < 0 {
		ls.PushBoolean(false)
		ls.Insert(-2)
		return 2
	} else {
		ls.PushBoolean(true)
		ls.Insert(-(r + 1))
		return r + 1
	}
}

func auxResume(ls, co api.State, nArgs int) int {
	if !ls.CheckStack(nArgs) {
		ls.PushString("too many arguments to resume")
		return -1
	}
	if co.Status() == api.StatusOK && co.GetTop() == 0 {
		ls.PushString("cannot resume dead coroutine")
		return -1
	}
	ls.XMove(co, nArgs)
	status := co.Resume(ls, nArgs)
	if status == api.StatusOK || status == api.StatusYield {
		nres := co.GetTop()
		if !ls.CheckStack(nres + 1) {
			co.Pop(nres)
			ls.PushString("too many results to resume")
			return -1
		}
		co.XMove(ls, nres)
		return nres
	}
	co.XMove(ls, 1)
	return -1
}

// coroutine.yield (···)
func coYield(ls api.State) int {
	return int(ls.Yield(ls.GetTop()))
}

// coroutine.status (co)
func coStatus(ls api.State) int {
	co := ls.ToThread(1)
	ls.ArgCheck(co != nil, 1, "coroutine expected")
	if ls == co {
		ls.PushString("running")
		return 1
	}
	switch co.Status() {
	case api.StatusYield:
		ls.PushString("suspended")
	case api.StatusOK:
		if co.GetStack() {
			ls.PushString("normal")
		} else if co.GetTop() == 0 {
			ls.PushString("dead")
		} else {
			ls.PushString("suspended")
		}
	default:
		ls.PushString("dead")
	}
	return 1
}

// coroutine.isyieldable ()
func coYieldable(ls api.State) int {
	ls.PushBoolean(ls.IsYieldable())
	return 1
}

// coroutine.running ()
func coRunning(ls api.State) int {
	isMain := ls.PushThread()
	ls.PushBoolean(isMain)
	return 2
}

// coroutine.close (co)
func coClose(ls api.State) int {
	co := ls.ToThread(1)
	ls.ArgCheck(co != nil, 1, "coroutine expected")
	status := co.CloseThread()
	ls.PushBoolean(status == api.StatusOK)
	return 1
}

// coroutine.wrap (f) creates one coroutine from f and returns a function
// that resumes it on each call, re-raising any error instead of returning a
// status flag, per spec §5's wrap semantics.
func coWrap(ls api.State) int {
	coCreate(ls)
	co := ls.ToThread(-1)
	wrapped := func(ls api.State) int {
		nArgs := ls.GetTop()
		r := auxResume(ls, co, nArgs)
		if r < 0 {
			ls.Error()
			return 0
		}
		return r
	}
	ls.PushGoFunction(wrapped)
	return 1
}
