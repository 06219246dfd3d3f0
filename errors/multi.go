package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no errors are provided or all errors are nil, this function returns nil.
// A single non nil error is returned as it is. Otherwise all errors are
// grouped into a multi error whose ABCI code is that of the first element.
func Append(errs ...error) error {
	var res []error
	for _, e := range errs {
		if errIsNil(e) {
			continue
		}
		if u, ok := e.(*multiErr); ok {
			res = append(res, u.errs...)
			continue
		}
		res = append(res, e)
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	}
	return &multiErr{errs: res}
}

type multiErr struct {
	errs []error
}

func (e *multiErr) Error() string {
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(e.errs), strings.Join(msgs, "\n\t"))
}

// Unpack returns all grouped errors.
func (e *multiErr) Unpack() []error {
	return e.errs
}

// ABCICode returns the code of the first grouped error.
func (e *multiErr) ABCICode() uint32 {
	return abciCode(e.errs[0])
}

var _ unpacker = (*multiErr)(nil)
