package textkeep

import (
	"context"

	"github.com/textkeep/textkeep/textkeep/ops"
)

type batchOpKind int

const (
	batchAdd batchOpKind = iota
	batchRemove
)

type batchOp struct {
	kind batchOpKind
	id   any
	doc  Document
}

// Batch is a mixed sequence of add and remove operations applied in
// one transaction. Adds behave as safe upserts: any prior row with
// the same id is deleted inside the same transaction.
type Batch struct {
	ops []batchOp
}

func NewBatch() Batch {
	return Batch{ops: make([]batchOp, 0)}
}

func (b *Batch) Add(id any, doc Document) error {
	if id == nil {
		return New(ErrMissingID, "batch add needs an id")
	}
	b.ops = append(b.ops, batchOp{kind: batchAdd, id: id, doc: doc})
	return nil
}

func (b *Batch) Remove(id any) error {
	if id == nil {
		return New(ErrMissingID, "batch remove needs an id")
	}
	b.ops = append(b.ops, batchOp{kind: batchRemove, id: id})
	return nil
}

func (b *Batch) Len() int {
	return len(b.ops)
}

func (b *Batch) Empty() bool {
	return len(b.ops) == 0
}

// Execute applies the batch against ix and reports how many
// operations ran. On error nothing is persisted.
func (b *Batch) Execute(ctx context.Context, ix *Index) (int, error) {
	if b.Empty() {
		return 0, nil
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, Wrap(ErrSQL, "begin transaction", err)
	}
	defer tx.Rollback()

	style := ix.adapter.PlaceholderStyle()
	count := 0
	for _, op := range b.ops {
		switch op.kind {
		case batchAdd:
			doc := make(Document, len(op.doc)+1)
			for k, v := range op.doc {
				doc[k] = v
			}
			doc[FieldID] = op.id
			if _, err := ops.DeleteByID(ctx, tx, style, op.id); err != nil {
				return 0, Wrap(ErrSQL, "remove prior document", err)
			}
			if err := ix.insertOne(ctx, tx, doc); err != nil {
				return 0, err
			}
		case batchRemove:
			if _, err := ops.DeleteByID(ctx, tx, style, op.id); err != nil {
				return 0, Wrap(ErrSQL, "remove document", err)
			}
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, Wrap(ErrSQL, "commit transaction", err)
	}
	return count, nil
}
