package session

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/gymshop/internal/domain/cart"
)

// encodeLedger renders the ledger as [{"id":1,"quantity":2},...].
func encodeLedger(l *cart.Ledger) string {
	var e jx.Encoder
	e.ArrStart()
	for _, entry := range l.Entries() {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Int(entry.ProductID) })
			e.Field("quantity", func(e *jx.Encoder) { e.Int(entry.Quantity) })
		})
	}
	e.ArrEnd()
	return e.String()
}

func decodeLedger(s string) (*cart.Ledger, error) {
	var entries []cart.Entry
	err := jx.DecodeStr(s).Arr(func(d *jx.Decoder) error {
		var entry cart.Entry
		if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			var err error
			switch string(key) {
			case "id":
				entry.ProductID, err = d.Int()
			case "quantity":
				entry.Quantity, err = d.Int()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode ledger")
	}
	return cart.NewLedger(entries...)
}
