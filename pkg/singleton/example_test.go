package singleton_test

import (
	"errors"
	"fmt"

	"github.com/yaklabco/solo/pkg/singleton"
)

type Counter struct {
	Value int
}

func Example() {
	reg := singleton.New(singleton.WithName("example"), singleton.WithGate(&singleton.Gate{}))

	singleton.MutableIn[Counter](reg).Value++
	fmt.Println(singleton.ConstIn[Counter](reg).Value)

	reg.Gate().Lock()
	_, err := singleton.TryMutableIn[Counter](reg)
	fmt.Println(errors.Is(err, singleton.ErrLocked))

	reg.Gate().Unlock()
	_ = reg.Teardown()
	fmt.Println(singleton.IsDestroyedIn[Counter](reg))
	// Output:
	// 1
	// true
	// true
}
