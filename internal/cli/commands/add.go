package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/textkeep/textkeep/internal/cliopt"
	"github.com/textkeep/textkeep/textkeep"
)

// RunAdd indexes one document, or a JSON-lines batch from stdin.
func RunAdd(g cliopt.GlobalOptions, log zerolog.Logger, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		id      string
		docJSON string
		batch   bool
		unsafe  bool
	)
	fs.StringVar(&id, "id", "", "document id (generated when omitted)")
	fs.StringVar(&docJSON, "json", "", "document JSON (stdin when omitted)")
	fs.BoolVar(&batch, "batch", false, "read JSON-lines documents from stdin, one transaction")
	fs.BoolVar(&unsafe, "unsafe", false, "skip the delete-before-insert upsert step")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx := context.Background()
	ix, err := openIndex(ctx, g)
	if err != nil {
		return fail(log, "open index", err)
	}
	defer ix.Close()

	if batch {
		docs, err := readBatch(os.Stdin)
		if err != nil {
			return fail(log, "read batch", err)
		}
		if err := ix.AddBatch(ctx, docs); err != nil {
			return fail(log, "add batch", err)
		}
		log.Info().Int("documents", len(docs)).Msg("batch indexed")
		printJSON(g, map[string]any{"indexed": len(docs)})
		return 0
	}

	doc, err := readDoc(docJSON)
	if err != nil {
		return fail(log, "read document", err)
	}
	if id == "" {
		if v, ok := doc[textkeep.FieldID]; ok {
			id = fmt.Sprint(v)
		} else {
			id = uuid.NewString()
		}
	}
	if err := ix.Add(ctx, id, doc, !unsafe); err != nil {
		return fail(log, "add document", err)
	}
	log.Debug().Str("id", id).Msg("document indexed")
	printJSON(g, map[string]any{"id": id})
	return 0
}

func readDoc(docJSON string) (textkeep.Document, error) {
	var raw []byte
	if docJSON != "" {
		raw = []byte(docJSON)
	} else {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	var doc textkeep.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid document JSON: %w", err)
	}
	return doc, nil
}

func readBatch(r io.Reader) ([]textkeep.Document, error) {
	var docs []textkeep.Document
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Bytes()
		if len(text) == 0 {
			continue
		}
		var doc textkeep.Document
		if err := json.Unmarshal(text, &doc); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		docs = append(docs, doc)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
