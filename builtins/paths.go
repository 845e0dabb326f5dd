package builtins

import (
	"sort"
	"strings"

	"ruchy/types"
)

// Associated functions of the built-in collection types, keyed by the
// last two path segments: HashMap::new, String::from
func (r *Registry) registerPaths() {
	newMap := func(ctx *types.TaskContext, args []types.Value) types.Result {
		return types.Ok(types.NewMap())
	}
	newSet := func(ctx *types.TaskContext, args []types.Value) types.Result {
		return types.Ok(types.NewSet())
	}
	r.RegisterPath("HashMap::new", noArgs("HashMap::new", newMap))
	r.RegisterPath("BTreeMap::new", noArgs("BTreeMap::new", newMap))
	r.RegisterPath("HashSet::new", noArgs("HashSet::new", newSet))
	r.RegisterPath("BTreeSet::new", noArgs("BTreeSet::new", newSet))
	r.RegisterPath("Vec::new", noArgs("Vec::new", func(ctx *types.TaskContext, args []types.Value) types.Result {
		return types.Ok(types.NewEmptyList())
	}))
	r.RegisterPath("String::new", noArgs("String::new", func(ctx *types.TaskContext, args []types.Value) types.Result {
		return types.Ok(types.NewStr(""))
	}))
	r.RegisterPath("String::from", builtinStringFrom)
	r.RegisterPath("Option::Some", builtinSome)
	r.RegisterPath("Result::Ok", builtinOk)
	r.RegisterPath("Result::Err", builtinErr)
}

// RegisterPath adds an associated function reachable through a path
func (r *Registry) RegisterPath(path string, fn types.BuiltinFunc) {
	r.paths[path] = fn
}

// LookupPath resolves a path such as std::collections::HashMap::new.
// Leading std and collections segments are ignored.
func (r *Registry) LookupPath(segments []string) (types.BuiltinFunc, bool) {
	for len(segments) > 2 && (segments[0] == "std" || segments[0] == "collections") {
		segments = segments[1:]
	}
	if len(segments) != 2 {
		return nil, false
	}
	fn, ok := r.paths[strings.Join(segments, "::")]
	return fn, ok
}

// PathNames returns the sorted names of every associated function
func (r *Registry) PathNames() []string {
	names := make([]string, 0, len(r.paths))
	for n := range r.paths {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func noArgs(name string, fn types.BuiltinFunc) types.BuiltinFunc {
	return func(ctx *types.TaskContext, args []types.Value) types.Result {
		if len(args) != 0 {
			return types.Err(types.E_ARGS, "%s takes 0 argument(s), got %d", name, len(args))
		}
		return fn(ctx, args)
	}
}

// builtinStringFrom copies a string or renders a char
func builtinStringFrom(ctx *types.TaskContext, args []types.Value) types.Result {
	if err := oneArg("String::from", args); err != nil {
		return types.Raise(err)
	}
	switch v := args[0].(type) {
	case types.StrValue:
		return types.Ok(v)
	case types.CharValue:
		return types.Ok(types.NewStr(v.String()))
	}
	return types.Err(types.E_TYPE, "String::from expects a string, got %s", types.TypeName(args[0]))
}
