package store

import "github.com/storybookapp/storybook-server/internal/domain"

// promptCatalogVersion identifies the built-in catalog below. Bump it when
// the catalog changes so SeedPrompts rebuilds the collection.
const promptCatalogVersion = 1

// promptCatalog is the built-in prompt suggestion reference data. IDs are
// assigned at seed time.
var promptCatalog = []domain.StoryPrompt{
	{
		Prompt:   "A young girl discovers a glowing crystal in her grandmother's garden that holds a tiny trapped dragon.",
		Genre:    domain.GenreFantasy,
		Audience: domain.AudienceChildren,
		Tags:     []string{"dragons", "magic", "friendship"},
	},
	{
		Prompt:   "A lighthouse keeper's cat learns it can walk across moonbeams and visits a city in the clouds.",
		Genre:    domain.GenreFantasy,
		Audience: domain.AudienceChildren,
		Tags:     []string{"animals", "magic", "adventure"},
	},
	{
		Prompt:   "An apprentice mapmaker realizes the maps she draws change the places they depict.",
		Genre:    domain.GenreFantasy,
		Audience: domain.AudiencePreTeen,
		Tags:     []string{"magic", "maps", "responsibility"},
	},
	{
		Prompt:   "The last librarian of a drowned city guards books that remember a world before the flood.",
		Genre:    domain.GenreFantasy,
		Audience: domain.AudienceAdult,
		Tags:     []string{"libraries", "memory", "loss"},
	},
	{
		Prompt:   "A maintenance robot on a generation ship starts receiving messages from a crew that does not exist.",
		Genre:    domain.GenreSciFi,
		Audience: domain.AudienceTeen,
		Tags:     []string{"space", "mystery", "ai"},
	},
	{
		Prompt:   "Twins living on different planets swap diaries once a year when their orbits align.",
		Genre:    domain.GenreSciFi,
		Audience: domain.AudiencePreTeen,
		Tags:     []string{"space", "family", "letters"},
	},
	{
		Prompt:   "A weather engineer discovers someone is stealing whole seasons from small towns.",
		Genre:    domain.GenreSciFi,
		Audience: domain.AudienceAdult,
		Tags:     []string{"climate", "conspiracy"},
	},
	{
		Prompt:   "An archivist notices three unrelated historical documents have vanished, each pointing to the same abandoned town.",
		Genre:    domain.GenreMystery,
		Audience: domain.AudienceAdult,
		Tags:     []string{"archives", "conspiracy", "history"},
	},
	{
		Prompt:   "A school janitor keeps finding chess pieces in impossible places, arranged into the middle of a famous game.",
		Genre:    domain.GenreMystery,
		Audience: domain.AudienceTeen,
		Tags:     []string{"puzzles", "school"},
	},
	{
		Prompt:   "Every book checked out from the village library returns with one extra sentence written inside.",
		Genre:    domain.GenreMystery,
		Audience: domain.AudiencePreTeen,
		Tags:     []string{"libraries", "puzzles"},
	},
	{
		Prompt:   "Two rival food-cart owners keep getting mistaken for each other, until a city festival forces them to cook together.",
		Genre:    domain.GenreRomance,
		Audience: domain.AudienceAdult,
		Tags:     []string{"food", "rivals"},
	},
	{
		Prompt:   "A violinist and a deaf painter collaborate on a mural that shows what music looks like.",
		Genre:    domain.GenreRomance,
		Audience: domain.AudienceTeen,
		Tags:     []string{"art", "music"},
	},
	{
		Prompt:   "A sleepy hedgehog is determined to see winter for the first time instead of hibernating.",
		Genre:    domain.GenreChildrens,
		Audience: domain.AudienceChildren,
		Tags:     []string{"animals", "seasons", "perseverance"},
	},
	{
		Prompt:   "The smallest tugboat in the harbor is the only one brave enough to guide ships through the fog.",
		Genre:    domain.GenreChildrens,
		Audience: domain.AudienceChildren,
		Tags:     []string{"boats", "courage"},
	},
	{
		Prompt:   "A crew of kids builds a raft to follow a paper boat their little sister set loose on the river.",
		Genre:    domain.GenreAdventure,
		Audience: domain.AudiencePreTeen,
		Tags:     []string{"rivers", "siblings", "journey"},
	},
	{
		Prompt:   "A retired mountain guide agrees to one last climb to return a stranger's ashes to a hidden summit.",
		Genre:    domain.GenreAdventure,
		Audience: domain.AudienceAdult,
		Tags:     []string{"mountains", "promises"},
	},
	{
		Prompt:   "A character wakes up inside an unfinished story and must convince its author to keep writing.",
		Genre:    domain.GenreAny,
		Audience: domain.AudienceAny,
		Tags:     []string{"meta", "imagination"},
	},
	{
		Prompt:   "A door appears in the same place in every town, and only one person can see it.",
		Genre:    domain.GenreAny,
		Audience: domain.AudienceAny,
		Tags:     []string{"doors", "mystery", "imagination"},
	},
}
