package internal

import (
	"errors"
	"reflect"
	"sync"

	errorsGo "github.com/go-errors/errors"
)

// Closer releases registered resources in reverse order of registration.
type Closer interface {
	Close() error
	OnClose(onClose func() error)
	AddClosers(closers ...interface{ Close() error })
	Closed() bool
}

var _ Closer = (*lifoCloser)(nil)

type lifoCloser struct {
	mu           sync.Mutex
	onCloseFuncs []func() error
	initObjs     map[initObjKey]struct{}
	closed       bool
}

type initObjKey struct {
	p uintptr
	t string
}

// NewCloser returns a Closer. Resources are never released implicitly,
// Close has to be called on every exit path.
func NewCloser() Closer { return &lifoCloser{} }

// Close runs all registered funcs, last registered first. Every func runs
// even if earlier ones fail, the errors are joined. Subsequent calls are no-ops.
func (c *lifoCloser) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	funcs := c.onCloseFuncs
	c.onCloseFuncs = nil
	c.mu.Unlock()

	var errs []error
	for i := len(funcs) - 1; i > -1; i-- {
		if onCloseFunc := funcs[i]; onCloseFunc != nil {
			if err := onCloseFunc(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return errorsGo.Wrap(err, 1)
	}
	return nil
}

func (c *lifoCloser) Closed() bool {
	if c == nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *lifoCloser) OnClose(onClose func() error) {
	if c == nil || onClose == nil {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		// late registration after teardown: release immediately
		_ = onClose()
		return
	}
	c.onCloseFuncs = append(c.onCloseFuncs, onClose)
	c.mu.Unlock()
}

func (c *lifoCloser) AddClosers(closers ...interface{ Close() error }) {
	if c == nil || len(closers) == 0 {
		return
	}
	for _, cl := range closers {
		cl := cl
		if cl == nil {
			continue
		}
		objType := reflect.TypeOf(cl)
		var ptr any = cl
		switch objType.Kind() {
		// don't use slice, map, func as map keys
		case reflect.Slice, reflect.Map, reflect.Func:
			ptr = &cl
		case reflect.Pointer:
		default:
			ptr = &cl
		}
		key := initObjKey{p: reflect.ValueOf(ptr).Pointer(), t: objType.String()}
		c.mu.Lock()
		if c.initObjs == nil {
			c.initObjs = make(map[initObjKey]struct{})
		}
		_, alreadyAdded := c.initObjs[key]
		if !alreadyAdded {
			c.initObjs[key] = struct{}{}
		}
		c.mu.Unlock()
		if alreadyAdded {
			continue
		}
		c.OnClose(func() error {
			defer func() {
				c.mu.Lock()
				defer c.mu.Unlock()
				delete(c.initObjs, key)
			}()
			if err := cl.Close(); err != nil {
				return errorsGo.New(err)
			}
			return nil
		})
	}
}
