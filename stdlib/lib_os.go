package stdlib

import (
	"time"

	"github.com/lua54vm/core/api"
)

var osFuncs = api.FuncReg{
	"time":     osTime,
	"date":     osDate,
	"difftime": osDiffTime,
	"clock":    osClock,
	"getenv":   osGetEnv,
	"remove":   osRemove,
	"rename":   osRename,
	"tmpname":  osTmpName,
	"execute":  osExecute,
	"exit":     osExit,
}

// OpenOSLib installs os.*, per spec §6. File I/O lives in io.*; this
// library only covers process/clock/filesystem-metadata operations,
// all routed through the host's vmconfig.Environment.
func OpenOSLib(ls api.State) int {
	ls.NewLib(osFuncs)
	return 1
}

// os.time ([table])
func osTime(ls api.State) int {
	env := ls.Config().Environment
	if ls.IsNoneOrNil(1) {
		ls.PushInteger(env.Now().Unix())
		return 1
	}
	ls.CheckType(1, api.TypeTable)
	sec := _getField(ls, "sec", 0)
	min := _getField(ls, "min", 0)
	hour := _getField(ls, "hour", 12)
	day := _getField(ls, "day", -1)
	month := _getField(ls, "month", -1)
	year := _getField(ls, "year", -1)
	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.Local).Unix()
	ls.PushInteger(t)
	return 1
}

func _getField(ls api.State, key string, dft int64) int {
	t := ls.GetField(-1, key)
	res, isNum := ls.ToIntegerX(-1)
	if !isNum {
		if t != api.TypeNil {
			ls.Error2("field '%s' is not an integer", key)
		} else if dft < 0 {
			ls.Error2("field '%s' missing in date table", key)
		}
		res = dft
	}
	ls.Pop(1)
	return int(res)
}

func _setField(ls api.State, key string, value int) {
	ls.PushInteger(int64(value))
	ls.SetField(-2, key)
}

// os.date ([format [, time]])
func osDate(ls api.State) int {
	env := ls.Config().Environment
	format := ls.OptString(1, "%c")
	var t time.Time
	if ls.IsInteger(2) {
		t = time.Unix(ls.ToInteger(2), 0)
	} else {
		t = env.Now()
	}
	if format != "" && format[0] == '!' {
		format = format[1:]
		t = t.UTC()
	}
	switch format {
	case "*t", "!*t":
		ls.CreateTable(0, 9)
		_setField(ls, "sec", t.Second())
		_setField(ls, "min", t.Minute())
		_setField(ls, "hour", t.Hour())
		_setField(ls, "day", t.Day())
		_setField(ls, "month", int(t.Month()))
		_setField(ls, "year", t.Year())
		_setField(ls, "wday", int(t.Weekday())+1)
		_setField(ls, "yday", t.YearDay())
		ls.PushBoolean(false)
		ls.SetField(-2, "isdst")
	case "%c":
		ls.PushString(t.Format(time.ANSIC))
	default:
		ls.PushString(strftime(format, t))
	}
	return 1
}

// strftime translates the common C strftime directives os.date's
// format string uses into Go's reference-time layout, one pass.
func strftime(format string, t time.Time) string {
	out := make([]byte, 0, len(format))
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			out = append(out, format[i])
			continue
		}
		i++
		switch format[i] {
		case 'Y':
			out = append(out, t.Format("2006")...)
		case 'y':
			out = append(out, t.Format("06")...)
		case 'm':
			out = append(out, t.Format("01")...)
		case 'd':
			out = append(out, t.Format("02")...)
		case 'H':
			out = append(out, t.Format("15")...)
		case 'M':
			out = append(out, t.Format("04")...)
		case 'S':
			out = append(out, t.Format("05")...)
		case 'p':
			out = append(out, t.Format("PM")...)
		case 'A':
			out = append(out, t.Format("Monday")...)
		case 'a':
			out = append(out, t.Format("Mon")...)
		case 'B':
			out = append(out, t.Format("January")...)
		case 'b':
			out = append(out, t.Format("Jan")...)
		case '%':
			out = append(out, '%')
		default:
			out = append(out, '%', format[i])
		}
	}
	return string(out)
}

// os.difftime (t2, t1)
func osDiffTime(ls api.State) int {
	t2 := ls.CheckNumber(1)
	t1 := ls.CheckNumber(2)
	ls.PushNumber(t2 - t1)
	return 1
}

// os.clock ()
func osClock(ls api.State) int {
	ls.PushNumber(ls.Config().Environment.Clock())
	return 1
}

// os.getenv (varname)
func osGetEnv(ls api.State) int {
	key := ls.CheckString(1)
	if v, ok := ls.Config().Environment.Getenv(key); ok {
		ls.PushString(v)
	} else {
		ls.PushNil()
	}
	return 1
}

// os.remove (filename)
func osRemove(ls api.State) int {
	filename := ls.CheckString(1)
	if err := ls.Config().Environment.Remove(filename); err != nil {
		ls.PushNil()
		ls.PushString(err.Error())
		return 2
	}
	ls.PushBoolean(true)
	return 1
}

// os.rename (oldname, newname)
func osRename(ls api.State) int {
	oldName := ls.CheckString(1)
	newName := ls.CheckString(2)
	if err := ls.Config().Environment.Rename(oldName, newName); err != nil {
		ls.PushNil()
		ls.PushString(err.Error())
		return 2
	}
	ls.PushBoolean(true)
	return 1
}

// os.tmpname ()
func osTmpName(ls api.State) int {
	ls.PushString(ls.Config().Environment.Now().Format("/tmp/lua_20060102150405"))
	return 1
}

// os.execute ([command])
func osExecute(ls api.State) int {
	if ls.IsNoneOrNil(1) {
		ls.PushBoolean(true)
		return 1
	}
	cmd := ls.CheckString(1)
	out, code, err := ls.Config().Environment.Exec("sh", "-c", cmd)
	_ = out
	ls.PushBoolean(err == nil && code == 0)
	ls.PushString("exit")
	ls.PushInteger(int64(code))
	return 3
}

// os.exit ([code [, close]])
func osExit(ls api.State) int {
	env := ls.Config().Environment
	if ls.IsNoneOrNil(1) || ls.IsBoolean(1) {
		if ls.ToBoolean(1) || ls.IsNoneOrNil(1) {
			env.Exit(0)
		} else {
			env.Exit(1)
		}
	} else {
		env.Exit(int(ls.CheckInteger(1)))
	}
	return 0
}
