package stdlib

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/lua54vm/core/api"
)

// fileHandle is the Go-side state behind every Lua file-handle table
// this library hands out. Regular files are buffered in memory (the
// host Environment abstraction only exposes whole-file ReadFile/
// WriteFile, not streaming opens); io.stdin/stdout/stderr instead wrap
// the process's real streams directly, since those aren't filesystem
// paths the Environment seam covers.
type fileHandle struct {
	mu     sync.Mutex
	name   string
	data   []byte
	pos    int
	write  bool
	closed bool
	std    *os.File
}

var (
	handlesMu sync.Mutex
	handles   = map[any]*fileHandle{}
)

const ioFileMetaKey = "__iofile_meta"

var ioFuncs = api.FuncReg{
	"open":  ioOpen,
	"close": ioClose,
	"read":  ioRead,
	"write": ioWrite,
	"lines": ioLines,
}

var fileMethods = api.FuncReg{
	"read":  fileReadMethod,
	"write": fileWriteMethod,
	"close": fileCloseMethod,
	"lines": fileLinesMethod,
}

// OpenIOLib installs io.*, per spec §6. File handles are Lua tables
// whose __index points at a shared methods table, matching the real
// Lua file-handle calling convention (file:read(), file:close()).
func OpenIOLib(ls api.State) int {
	ls.NewLib(ioFuncs)

	ls.NewLibTable(fileMethods)
	ls.SetFuncs(fileMethods, 0)
	ls.PushValue(-1)
	ls.SetField(-2, "__index")
	ls.SetField(api.RegistryIndex, ioFileMetaKey)

	pushStdFile(ls, os.Stdout)
	ls.SetField(-2, "stdout")
	pushStdFile(ls, os.Stdin)
	ls.SetField(-2, "stdin")
	pushStdFile(ls, os.Stderr)
	ls.SetField(-2, "stderr")
	return 1
}

func newFileTable(ls api.State) {
	ls.CreateTable(0, 0)
	ls.GetField(api.RegistryIndex, ioFileMetaKey)
	ls.SetMetatable(-2)
}

func pushStdFile(ls api.State, f *os.File) {
	newFileTable(ls)
	registerHandle(ls, &fileHandle{name: f.Name(), std: f})
}

func registerHandle(ls api.State, fh *fileHandle) {
	key := ls.ToPointer(-1)
	handlesMu.Lock()
	handles[key] = fh
	handlesMu.Unlock()
}

func handleFor(ls api.State, idx int) *fileHandle {
	key := ls.ToPointer(idx)
	handlesMu.Lock()
	fh := handles[key]
	handlesMu.Unlock()
	if fh == nil {
		ls.Error2("attempt to use a closed or invalid file")
	}
	return fh
}

// io.open (filename [, mode])
func ioOpen(ls api.State) int {
	fname := ls.CheckString(1)
	mode := ls.OptString(2, "r")
	write := strings.ContainsAny(mode, "wa+")

	fh := &fileHandle{name: fname, write: write}
	if write {
		if strings.Contains(mode, "a") {
			if data, err := ls.Config().Environment.ReadFile(fname); err == nil {
				fh.data = data
			}
		}
	} else {
		data, err := ls.Config().Environment.ReadFile(fname)
		if err != nil {
			ls.PushNil()
			ls.PushString(err.Error())
			return 2
		}
		fh.data = data
	}

	newFileTable(ls)
	registerHandle(ls, fh)
	return 1
}

// io.close ([file])
func ioClose(ls api.State) int {
	if ls.IsNoneOrNil(1) {
		return 0
	}
	return fileCloseMethod(ls)
}

// io.read (···) reads from the ambient stdin handle.
func ioRead(ls api.State) int {
	pushStdFile(ls, os.Stdin)
	ls.Insert(1)
	return fileReadMethod(ls)
}

// io.write (···) writes to the ambient stdout handle.
func ioWrite(ls api.State) int {
	pushStdFile(ls, os.Stdout)
	ls.Insert(1)
	return fileWriteMethod(ls)
}

// io.lines ([filename, ···])
func ioLines(ls api.State) int {
	fname := ls.CheckString(1)
	data, err := ls.Config().Environment.ReadFile(fname)
	if err != nil {
		ls.Error2("%s", err.Error())
	}
	return pushLineIterator(ls, data)
}

func fileCloseMethod(ls api.State) int {
	fh := handleFor(ls, 1)
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if fh.closed {
		ls.PushBoolean(true)
		return 1
	}
	fh.closed = true
	ls.PushBoolean(true)
	return 1
}

func fileLinesMethod(ls api.State) int {
	fh := handleFor(ls, 1)
	return pushLineIterator(ls, fh.data[fh.pos:])
}

func pushLineIterator(ls api.State, data []byte) int {
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(data) == 0 {
		lines = nil
	}
	i := 0
	iter := func(ls api.State) int {
		if i >= len(lines) {
			ls.PushNil()
			return 1
		}
		ls.PushString(lines[i])
		i++
		return 1
	}
	ls.PushGoFunction(iter)
	return 1
}

// file:read (···)
func fileReadMethod(ls api.State) int {
	fh := handleFor(ls, 1)
	fh.mu.Lock()
	defer fh.mu.Unlock()

	if fh.std == os.Stdin {
		return readStdin(ls)
	}

	n := ls.GetTop()
	if n == 1 {
		return 1 + readOneFormat(ls, fh, "l")
	}
	results := 0
	for i := 2; i <= n; i++ {
		if ls.IsNumber(i) {
			results += readBytes(ls, fh, int(ls.CheckInteger(i)))
		} else {
			results += readOneFormat(ls, fh, strings.TrimPrefix(ls.CheckString(i), "*"))
		}
	}
	return results
}

func readStdin(ls api.State) int {
	var line string
	_, err := fmtScanln(&line)
	if err != nil {
		ls.PushNil()
		return 1
	}
	ls.PushString(line)
	return 1
}

func fmtScanln(line *string) (int, error) {
	var s string
	n, err := fscanLine(os.Stdin, &s)
	*line = s
	return n, err
}

func fscanLine(f *os.File, out *string) (int, error) {
	buf := make([]byte, 0, 64)
	b := make([]byte, 1)
	for {
		n, err := f.Read(b)
		if n == 0 || err != nil {
			if len(buf) == 0 {
				return 0, err
			}
			break
		}
		if b[0] == '\n' {
			break
		}
		buf = append(buf, b[0])
	}
	*out = string(buf)
	return len(buf), nil
}

func readBytes(ls api.State, fh *fileHandle, n int) int {
	if fh.pos >= len(fh.data) {
		ls.PushNil()
		return 1
	}
	end := fh.pos + n
	if end > len(fh.data) {
		end = len(fh.data)
	}
	ls.PushString(string(fh.data[fh.pos:end]))
	fh.pos = end
	return 1
}

func readOneFormat(ls api.State, fh *fileHandle, format string) int {
	switch format {
	case "a":
		ls.PushString(string(fh.data[fh.pos:]))
		fh.pos = len(fh.data)
	case "l", "L":
		if fh.pos >= len(fh.data) {
			ls.PushNil()
			return 1
		}
		idx := strings.IndexByte(string(fh.data[fh.pos:]), '\n')
		if idx < 0 {
			line := fh.data[fh.pos:]
			fh.pos = len(fh.data)
			ls.PushString(string(line))
		} else {
			end := fh.pos + idx
			line := fh.data[fh.pos:end]
			if format == "L" {
				line = fh.data[fh.pos : end+1]
			}
			fh.pos = end + 1
			ls.PushString(string(line))
		}
	case "n":
		start := fh.pos
		for fh.pos < len(fh.data) && strings.IndexByte("0123456789.+-eE", fh.data[fh.pos]) >= 0 {
			fh.pos++
		}
		if f, err := strconv.ParseFloat(string(fh.data[start:fh.pos]), 64); err == nil {
			ls.PushNumber(f)
		} else {
			ls.PushNil()
		}
	default:
		ls.Error2("invalid format '%s' to 'read'", format)
	}
	return 1
}

// file:write (···)
func fileWriteMethod(ls api.State) int {
	fh := handleFor(ls, 1)
	fh.mu.Lock()
	defer fh.mu.Unlock()

	n := ls.GetTop()
	var out strings.Builder
	for i := 2; i <= n; i++ {
		out.WriteString(ls.ToString2(i))
	}

	if fh.std != nil {
		fh.std.WriteString(out.String())
	} else {
		fh.data = append(fh.data, out.String()...)
		if err := ls.Config().Environment.WriteFile(fh.name, fh.data, 0644); err != nil {
			ls.PushNil()
			ls.PushString(err.Error())
			return 2
		}
	}
	ls.PushValue(1)
	return 1
}
