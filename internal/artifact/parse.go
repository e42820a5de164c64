package artifact

import "strings"

// ParsedArtifact is one <artifact> block extracted from assistant output.
type ParsedArtifact struct {
	ID      string
	Title   string
	Changes []Change
}

const (
	artifactOpen  = "<artifact "
	artifactClose = "</artifact>"
	actionOpen    = "<action "
	actionClose   = "</action>"
)

// Parse scans assistant output for <artifact> blocks and returns one
// ParsedArtifact per block, in order of appearance. Text outside the
// blocks is ignored.
//
// Each block carries id and title attributes and a list of <action>
// elements:
//
//	<artifact id="todo-app" title="Todo App">
//	  <action type="file" filePath="src/main.ts">...</action>
//	  <action type="shell">npm install</action>
//	  <action type="start">npm run dev</action>
//	</artifact>
//
// An unterminated block or action is parsed to the end of the text, so a
// cut-off response still yields the changes that were fully received.
func Parse(text string) []ParsedArtifact {
	var out []ParsedArtifact
	for {
		art, rest, found := parseNext(text)
		if !found {
			return out
		}
		out = append(out, art)
		text = rest
	}
}

// parseNext extracts the first artifact block from text and returns the
// remaining text after it.
func parseNext(text string) (art ParsedArtifact, rest string, found bool) {
	startIdx := strings.Index(text, artifactOpen)
	if startIdx == -1 {
		return ParsedArtifact{}, "", false
	}

	// Find end of opening tag
	tagBodyStart := startIdx + len(artifactOpen)
	closeIdx := strings.Index(text[tagBodyStart:], ">")
	if closeIdx == -1 {
		return ParsedArtifact{}, "", false
	}
	closeIdx += tagBodyStart

	// Attributes appear in any order
	tagBody := text[tagBodyStart:closeIdx]
	art = ParsedArtifact{
		ID:    extractAttr(tagBody, "id"),
		Title: extractAttr(tagBody, "title"),
	}

	body := text[closeIdx+1:]
	endIdx := strings.Index(body, artifactClose)
	if endIdx == -1 {
		// Cut-off block: everything that follows is body
		art.Changes = parseActions(body)
		return art, "", true
	}

	art.Changes = parseActions(body[:endIdx])
	return art, body[endIdx+len(artifactClose):], true
}

// parseActions extracts the <action> elements of one artifact body.
// Actions with an unknown type attribute are skipped.
func parseActions(body string) []Change {
	var changes []Change
	for {
		startIdx := strings.Index(body, actionOpen)
		if startIdx == -1 {
			return changes
		}

		tagBodyStart := startIdx + len(actionOpen)
		closeIdx := strings.Index(body[tagBodyStart:], ">")
		if closeIdx == -1 {
			return changes
		}
		closeIdx += tagBodyStart

		tagBody := body[tagBodyStart:closeIdx]
		kind, ok := changeKind(extractAttr(tagBody, "type"))

		content := body[closeIdx+1:]
		endIdx := strings.Index(content, actionClose)
		if endIdx == -1 {
			// Cut-off action: take what arrived
			body = ""
		} else {
			body = content[endIdx+len(actionClose):]
			content = content[:endIdx]
		}

		if !ok {
			continue
		}
		changes = append(changes, makeChange(kind, extractAttr(tagBody, "filePath"), content))
	}
}

// makeChange builds the Change for one action element.
func makeChange(kind Kind, filePath, content string) Change {
	c := Change{Kind: kind}
	switch kind {
	case KindFile:
		c.FilePath = filePath
		body := trimBlockNewlines(content)
		c.NewContent = &body
	case KindShell, KindStart:
		c.Command = strings.TrimSpace(content)
	}
	return c
}

// changeKind maps an action type attribute to its change kind.
func changeKind(t string) (Kind, bool) {
	switch t {
	case "file":
		return KindFile, true
	case "shell":
		return KindShell, true
	case "start":
		return KindStart, true
	case "external":
		return KindExternal, true
	default:
		return "", false
	}
}

// extractAttr extracts an attribute value from a tag body.
// Handles attributes in any order: type="file" filePath="src/main.ts"
func extractAttr(tag, name string) string {
	prefix := name + `="`
	i := strings.Index(tag, prefix)
	if i == -1 {
		return ""
	}
	start := i + len(prefix)
	end := strings.Index(tag[start:], `"`)
	if end == -1 {
		return ""
	}
	return tag[start : start+end]
}

// trimBlockNewlines strips the line break after the opening tag and the
// one before the closing tag, leaving file content exactly as authored.
func trimBlockNewlines(s string) string {
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")
	return s
}
