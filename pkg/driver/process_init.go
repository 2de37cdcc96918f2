package driver

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"jscore/pkg/builtins"
	"jscore/pkg/vm"
)

// ExitError is returned through a native call when guest code asks the host
// to terminate with process.exit.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("process exited with code %d", e.Code) }

// ProcessInitializer installs a Node-flavoured process global. It is not part
// of the standard library and only runs when [host].process is enabled.
type ProcessInitializer struct {
	argv    []string
	environ func() []string
	stderr  io.Writer
}

func NewProcessInitializer(argv []string, stderr io.Writer) *ProcessInitializer {
	if stderr == nil {
		stderr = os.Stderr
	}
	return &ProcessInitializer{argv: argv, environ: os.Environ, stderr: stderr}
}

func (p *ProcessInitializer) Name() string {
	return "process"
}

func (p *ProcessInitializer) Priority() int {
	return 300 // after every standard builtin
}

func (p *ProcessInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	argv := make([]vm.Value, len(p.argv))
	for i, arg := range p.argv {
		argv[i] = vm.StringValue(arg)
	}

	env := realm.ConstructObject()
	for _, kv := range p.environ() {
		if key, value, ok := strings.Cut(kv, "="); ok && key != "" {
			env.InsertValue(vm.StringKey(key), vm.StringValue(value), vm.AllAttributes)
		}
	}

	process := builtins.NewObjectBuilder(realm).
		Property(vm.StringKey("argv"), vm.ObjectValue(builtins.CreateArray(realm, argv)), vm.AllAttributes).
		Property(vm.StringKey("execArgv"), vm.ObjectValue(builtins.CreateArray(realm, nil)), vm.AllAttributes).
		Property(vm.StringKey("env"), vm.ObjectValue(env), vm.AllAttributes).
		Property(vm.StringKey("platform"), vm.StringValue(runtime.GOOS), vm.AllAttributes).
		Property(vm.StringKey("pid"), vm.IntegerValue(os.Getpid()), vm.AllAttributes).
		Property(vm.StringKey("stdout"), vm.ObjectValue(writerObject(realm, func() io.Writer { return realm.Output() })), vm.AllAttributes).
		Property(vm.StringKey("stderr"), vm.ObjectValue(writerObject(realm, func() io.Writer { return p.stderr })), vm.AllAttributes).
		Function(processCwd, "cwd", 0).
		Function(processExit, "exit", 1).
		Function(processMemoryUsage, "memoryUsage", 0).
		Build()

	return "process", vm.ObjectValue(process), vm.DefaultAttribute
}

// writerObject builds a stream-like object whose write(chunk) prints
// ToString(chunk) to the writer current at call time.
func writerObject(realm *vm.Realm, w func() io.Writer) *vm.GcObject {
	return builtins.NewObjectBuilder(realm).
		Function(func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
			s, err := realm.ToString(vm.Arg(args, 0))
			if err != nil {
				return vm.Undefined, err
			}
			if _, err := io.WriteString(w(), s); err != nil {
				return vm.False, nil
			}
			return vm.True, nil
		}, "write", 1).
		Build()
}

func processCwd(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return vm.StringValue(""), nil
	}
	return vm.StringValue(cwd), nil
}

func processExit(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	code := 0
	if arg := vm.Arg(args, 0); !arg.IsUndefined() {
		n, err := realm.ToIntegerOrInfinity(arg)
		if err != nil {
			return vm.Undefined, err
		}
		code = int(n)
	}
	return vm.Undefined, &ExitError{Code: code}
}

func processMemoryUsage(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	usage := builtins.NewObjectBuilder(realm).
		Property(vm.StringKey("heapUsed"), vm.NumberValue(float64(m.HeapAlloc)), vm.AllAttributes).
		Property(vm.StringKey("heapTotal"), vm.NumberValue(float64(m.HeapSys)), vm.AllAttributes).
		Property(vm.StringKey("rss"), vm.NumberValue(float64(m.Sys)), vm.AllAttributes).
		Property(vm.StringKey("objects"), vm.IntegerValue(realm.Heap().Len()), vm.AllAttributes).
		Build()
	return vm.ObjectValue(usage), nil
}
