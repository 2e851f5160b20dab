package store

import "fmt"

// Key layout. Chapter keys embed the story ID and a zero-padded sequence
// number so a prefix scan returns a story's chapters in order - the Badger
// equivalent of an index on storyId.
const (
	storyPrefix   = "story:"
	chapterPrefix = "chapter:"
	promptPrefix  = "prompt:"

	schemaVersionKey     = "meta:schema_version"
	promptSeedVersionKey = "meta:prompt_seed_version"
)

func storyKey(storyID string) []byte {
	return []byte(storyPrefix + storyID)
}

func chapterScanPrefix(storyID string) []byte {
	return []byte(chapterPrefix + storyID + ":")
}

func chapterKey(storyID string, seq int) []byte {
	return fmt.Appendf(nil, "%s%s:%03d", chapterPrefix, storyID, seq)
}

func promptKey(promptID string) []byte {
	return []byte(promptPrefix + promptID)
}
