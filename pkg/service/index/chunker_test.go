package index

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sauraha-lab/parkguide/pkg/domain/model"
)

func TestSplitDocumentShortContent(t *testing.T) {
	doc := model.Document{
		ID:       model.NewDocumentID(),
		Content:  "short text",
		Metadata: map[string]string{model.MetaSource: "a.txt", model.MetaCategory: "text"},
	}

	chunks := splitDocument(doc, 1000, 200)
	gt.Array(t, chunks).Length(1).Required()
	gt.Value(t, chunks[0].Content).Equal("short text")
	gt.Value(t, chunks[0].Seq).Equal(0)
	gt.Value(t, chunks[0].DocumentID).Equal(doc.ID)
}

func TestSplitDocumentWindowsAndOverlap(t *testing.T) {
	content := strings.Repeat("abcdefghij", 25) // 250 runes
	doc := model.Document{
		ID:       model.NewDocumentID(),
		Content:  content,
		Metadata: map[string]string{model.MetaSource: "b.txt", model.MetaCategory: "text"},
	}

	chunks := splitDocument(doc, 100, 20)
	// step 80: windows [0,100) [80,180) [160,250)
	gt.Array(t, chunks).Length(3).Required()
	gt.Value(t, len([]rune(chunks[0].Content))).Equal(100)
	gt.Value(t, len([]rune(chunks[1].Content))).Equal(100)
	gt.Value(t, len([]rune(chunks[2].Content))).Equal(90)

	// Overlap: tail of one window equals head of the next
	gt.Value(t, chunks[0].Content[80:]).Equal(chunks[1].Content[:20])

	for i, c := range chunks {
		gt.Value(t, c.Seq).Equal(i)
		gt.Value(t, c.Metadata).Equal(doc.Metadata)
	}
}

func TestSplitDocumentMetadataIsCopied(t *testing.T) {
	doc := model.Document{
		ID:       model.NewDocumentID(),
		Content:  "some content",
		Metadata: map[string]string{model.MetaSource: "c.txt"},
	}

	chunks := splitDocument(doc, 100, 10)
	gt.Array(t, chunks).Length(1).Required()

	chunks[0].Metadata[model.MetaSource] = "mutated"
	gt.Value(t, doc.Metadata[model.MetaSource]).Equal("c.txt")
}

func TestSplitDocumentEmptyContent(t *testing.T) {
	doc := model.Document{ID: model.NewDocumentID(), Content: "   \n  "}
	gt.Array(t, splitDocument(doc, 100, 10)).Length(0)
}

func TestSplitDocumentMultibyteRunes(t *testing.T) {
	doc := model.Document{
		ID:      model.NewDocumentID(),
		Content: strings.Repeat("गैंडा", 30), // 150 runes, 3 bytes each
	}

	chunks := splitDocument(doc, 100, 20)
	gt.Array(t, chunks).Length(2).Required()
	gt.Value(t, len([]rune(chunks[0].Content))).Equal(100)
}
