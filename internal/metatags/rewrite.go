package metatags

import "strings"

// Result is the outcome of a rewrite.
type Result struct {
	HTML   string
	Misses []Miss
}

// Rewrite replaces every managed tag in doc with the contents of v. A tag
// whose pattern does not match exactly once is left as it was and reported
// in Result.Misses; the rest of the document is still rewritten. doc is never
// modified in place and applying Rewrite twice yields the same output.
func Rewrite(doc string, v Values) (Result, error) {
	e, err := encode(v)
	if err != nil {
		return Result{HTML: doc}, err
	}

	result := Result{HTML: doc}
	for _, tag := range managed {
		locs := tag.pattern.FindAllStringIndex(result.HTML, -1)
		if len(locs) != 1 {
			result.Misses = append(result.Misses, Miss{Tag: tag.Key, Matches: len(locs)})
			continue
		}

		// Splice by hand so '$' in values is never read as a group reference
		var sb strings.Builder
		sb.Grow(len(result.HTML))
		sb.WriteString(result.HTML[:locs[0][0]])
		sb.WriteString(tag.render(e))
		sb.WriteString(result.HTML[locs[0][1]:])
		result.HTML = sb.String()
	}

	return result, nil
}
