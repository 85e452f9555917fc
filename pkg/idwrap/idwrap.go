package idwrap

import (
	"crypto/sha256"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDWrap is the client-side identifier for tree nodes and editor sessions.
// Backend records keep their own identifiers (numeric primary key plus a
// step/case code); IDWrap only has to be unique within an editing session.
type IDWrap struct {
	ulid ulid.ULID
}

func New(u ulid.ULID) IDWrap {
	return IDWrap{ulid: u}
}

func NewNow() IDWrap {
	return IDWrap{ulid: ulid.Make()}
}

func NewText(s string) (IDWrap, error) {
	u, err := ulid.Parse(s)
	if err != nil {
		return IDWrap{}, err
	}
	return IDWrap{ulid: u}, nil
}

func NewTextMust(s string) IDWrap {
	id, err := NewText(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (u IDWrap) String() string {
	return u.ulid.String()
}

func (u IDWrap) Bytes() []byte {
	return u.ulid[:]
}

func (u IDWrap) Compare(id IDWrap) int {
	return u.ulid.Compare(id.ulid)
}

func (u IDWrap) IsZero() bool {
	return u.ulid == ulid.ULID{}
}

func (u IDWrap) Time() time.Time {
	return time.UnixMilli(int64(u.ulid.Time()))
}

// SQL driver value
func (u IDWrap) Value() (driver.Value, error) {
	return u.ulid.Value()
}

func (u *IDWrap) Scan(value interface{}) error {
	return u.ulid.UnmarshalBinary(value.([]byte))
}

// NewDerived returns the id deterministically derived from a backend code,
// so repeated loads of the same case produce stable node ids within and
// across sessions.
func NewDerived(code string) IDWrap {
	sum := sha256.Sum256([]byte(code))
	var u ulid.ULID
	copy(u[:], sum[:16])
	return IDWrap{ulid: u}
}

// NewStepCode returns an identifier in the backend's code format:
// "<unix seconds>-<uuid4 hex, upper case>". Codes for new steps are
// assigned server side; the client only generates them for drafts and
// exported files that have never been saved.
func NewStepCode() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(),
		strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")))
}
