// Package singleton provides one lazily constructed instance of a type per
// Registry, with a shared lock Gate that flags mutable access after a caller
// chosen checkpoint.
//
// A Registry plays the role of a module: the unit that owns the instances and
// tears them down together. Most programs use the package-level default
// registry through the generic helpers:
//
//	type Counter struct{ Value int }
//
//	singleton.Mutable[Counter]().Value++
//	fmt.Println(singleton.Const[Counter]().Value) // 1
//
//	singleton.Lock()
//	singleton.Mutable[Counter]() // violation: panics with *ViolationError
//
// Instances are allocated with new(T). If *T implements Initializer its Init
// method runs once after allocation; Provide installs a custom constructor
// ahead of first use.
//
// Checks for mutable access while locked and for access after Teardown are
// compiled in by default. Building with -tags=solo_nochecks removes them from
// Mutable and Const. TryMutable and TryConst always check and report
// violations as errors.
package singleton
