package document

import (
	"github.com/dgraph-io/badger/v4"

	"knife/internal/filter"
	"knife/internal/schema"
)

// join emulates an inner join: every left document is paired with the right
// documents whose RightField equals its LeftField, and the merged row is kept
// when it satisfies the predicate. Rows come out in left insertion order.
func join(txn *badger.Txn, j schema.Join, match filter.Matcher) ([]schema.Record, error) {
	left, err := scan(txn, j.Left)
	if err != nil {
		return nil, err
	}
	right, err := scan(txn, j.Right)
	if err != nil {
		return nil, err
	}

	byKey := make(map[any][]schema.Record, len(right))
	for _, doc := range right {
		v := doc.record[j.RightField]
		if v == nil {
			continue
		}
		byKey[v] = append(byKey[v], doc.record)
	}

	var out []schema.Record
	for _, l := range left {
		v := l.record[j.LeftField]
		if v == nil {
			continue
		}
		for _, r := range byKey[v] {
			merged := make(schema.Record, len(l.record)+len(r))
			for f, value := range l.record {
				merged[f] = value
			}
			for f, value := range r {
				merged[f] = value
			}
			if match(merged) {
				out = append(out, merged)
			}
		}
	}
	return out, nil
}
