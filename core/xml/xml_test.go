package xml

import (
	"strings"
	"testing"
)

const sampleDoc = `<?xml version="1.0"?>
<bible title="Sample">
  <book id="GEN" name="Genesis">
    <chapter number="1">
      <verse number="1">In the beginning</verse>
      <verse number="2">And the <w>earth</w> was void</verse>
    </chapter>
  </book>
</bible>`

func TestParseAndRoot(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	root := doc.Root()
	if root == nil {
		t.Fatal("Root returned nil")
	}
	if root.Name() != "bible" {
		t.Errorf("root name = %q, want bible", root.Name())
	}
	if root.Attr("title") != "Sample" {
		t.Errorf("title attr = %q", root.Attr("title"))
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte("<bible><book></bible>")); err == nil {
		t.Error("Parse should fail on mismatched tags")
	}
}

func TestXPath(t *testing.T) {
	doc, _ := Parse([]byte(sampleDoc))
	nodes, err := doc.XPath("//verse")
	if err != nil {
		t.Fatalf("XPath failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("got %d verses, want 2", len(nodes))
	}

	first, err := doc.XPathFirst("//book[@id='GEN']")
	if err != nil {
		t.Fatalf("XPathFirst failed: %v", err)
	}
	if first == nil || first.Attr("name") != "Genesis" {
		t.Errorf("XPathFirst book = %v", first)
	}

	missing, err := doc.XPathFirst("//book[@id='EXO']")
	if err != nil {
		t.Fatalf("XPathFirst failed: %v", err)
	}
	if missing != nil {
		t.Error("XPathFirst should return nil for no match")
	}

	if _, err := doc.XPath("//[bad"); err == nil {
		t.Error("XPath should reject invalid expressions")
	}
}

func TestTextAndInnerText(t *testing.T) {
	doc, _ := Parse([]byte(sampleDoc))
	nodes, _ := doc.XPath("//verse")

	// Direct text only: child element text excluded.
	direct := nodes[1].Text()
	if strings.Contains(direct, "earth") {
		t.Errorf("Text() should exclude child element text, got %q", direct)
	}

	// InnerText includes descendants.
	inner := nodes[1].InnerText()
	if !strings.Contains(inner, "earth") {
		t.Errorf("InnerText() should include child element text, got %q", inner)
	}
}

func TestWalkDocumentOrder(t *testing.T) {
	doc, _ := Parse([]byte(sampleDoc))
	book, _ := doc.XPathFirst("//book")

	var elements []string
	var text strings.Builder
	book.Walk(func(n *Node) bool {
		if n.IsElement() {
			elements = append(elements, n.Name())
		} else if n.IsText() {
			text.WriteString(n.TextData())
		}
		return true
	})

	want := []string{"chapter", "verse", "verse", "w"}
	if len(elements) != len(want) {
		t.Fatalf("walked elements %v, want %v", elements, want)
	}
	for i := range want {
		if elements[i] != want[i] {
			t.Errorf("element[%d] = %q, want %q", i, elements[i], want[i])
		}
	}
	if !strings.Contains(text.String(), "In the beginning") {
		t.Errorf("walk text missing verse content: %q", text.String())
	}

	// Early termination.
	count := 0
	book.Walk(func(n *Node) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("walk visited %d nodes after stop, want 1", count)
	}
}

func TestSelectRelative(t *testing.T) {
	doc, _ := Parse([]byte(sampleDoc))
	book, _ := doc.XPathFirst("//book")

	chapters, err := book.SelectAll(".//chapter")
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(chapters) != 1 {
		t.Fatalf("got %d chapters, want 1", len(chapters))
	}

	verse, err := chapters[0].SelectFirst("verse[@number='2']")
	if err != nil {
		t.Fatalf("SelectFirst failed: %v", err)
	}
	if verse == nil || verse.Attr("number") != "2" {
		t.Errorf("SelectFirst verse = %v", verse)
	}
}

func TestHasAttr(t *testing.T) {
	doc, _ := Parse([]byte(sampleDoc))
	book, _ := doc.XPathFirst("//book")
	if !book.HasAttr("id") {
		t.Error("HasAttr(id) = false")
	}
	if book.HasAttr("osisID") {
		t.Error("HasAttr(osisID) = true")
	}
}
