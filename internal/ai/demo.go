package ai

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/storybookapp/storybook-server/internal/domain"
	"github.com/storybookapp/storybook-server/internal/format"
	"github.com/storybookapp/storybook-server/internal/id"
	"github.com/storybookapp/storybook-server/internal/media/images"
)

// Demo serves canned stories and generated placeholder images when no API
// key is configured, so the full wizard flow works offline. Artificial
// delays approximate real backend latency; construct with zero delays in
// tests.
type Demo struct {
	logger       *slog.Logger
	storyDelay   time.Duration
	imageDelay   time.Duration
	enhanceDelay time.Duration
}

// NewDemo creates a demo generator with realistic latency.
func NewDemo(logger *slog.Logger) *Demo {
	return &Demo{
		logger:       logger,
		storyDelay:   2 * time.Second,
		imageDelay:   1500 * time.Millisecond,
		enhanceDelay: 800 * time.Millisecond,
	}
}

// NewDemoInstant creates a demo generator without artificial delays.
func NewDemoInstant(logger *slog.Logger) *Demo {
	return &Demo{logger: logger}
}

// GenerateStory returns a canned story. An exact genre+audience match is
// preferred; otherwise any story sharing the genre or audience is relabeled,
// and failing that the first canned story is used.
func (d *Demo) GenerateStory(ctx context.Context, prompt string, genre domain.Genre, audience domain.Audience) (*domain.Story, error) {
	if err := sleepCtx(ctx, d.storyDelay); err != nil {
		return nil, err
	}

	var picked *cannedStory
	for i := range cannedStories {
		if cannedStories[i].genre == genre && cannedStories[i].audience == audience {
			picked = &cannedStories[i]
			break
		}
	}
	relabeled := false
	if picked == nil {
		for i := range cannedStories {
			if cannedStories[i].genre == genre || cannedStories[i].audience == audience {
				picked = &cannedStories[i]
				relabeled = true
				break
			}
		}
	}
	if picked == nil {
		picked = &cannedStories[0]
		relabeled = true
	}

	title := picked.title
	if relabeled {
		title = fmt.Sprintf("Demo: %s (%s - %s)", picked.title, genre, audience)
	}

	story := &domain.Story{
		Title:    title,
		Genre:    genre,
		Audience: audience,
		Chapters: make([]domain.Chapter, len(picked.chapters)),
	}
	for i, ch := range picked.chapters {
		story.Chapters[i] = domain.Chapter{
			ID:          id.MustGenerate(id.PrefixChapter),
			Title:       ch.title,
			Content:     format.TextToHTML(ch.text),
			ImagePrompt: ch.imagePrompt,
			ImageURL:    placeholderImage(ch.hue),
		}
	}

	if d.logger != nil {
		d.logger.Info("demo story served", "title", story.Title, "chapters", len(story.Chapters))
	}
	return story, nil
}

// GenerateChapterImage returns a random placeholder illustration.
func (d *Demo) GenerateChapterImage(ctx context.Context, chapterContent, customPrompt string) (string, error) {
	if err := sleepCtx(ctx, d.imageDelay); err != nil {
		return "", err
	}
	return placeholderImage(uint8(rand.IntN(256))), nil
}

// EnhancePrompt appends one of a fixed set of vivid settings to the idea.
func (d *Demo) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	if err := sleepCtx(ctx, d.enhanceDelay); err != nil {
		return "", err
	}
	return prompt + " " + demoEnhancements[rand.IntN(len(demoEnhancements))], nil
}

// CheckConnection always succeeds; there is nothing to connect to.
func (d *Demo) CheckConnection(context.Context) error {
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// placeholderImage renders a small vertical gradient PNG around the given
// hue and returns it as a data URI. Encoding an 8x8 PNG never fails.
func placeholderImage(hue uint8) string {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		shade := uint8(96 + y*2)
		c := color.RGBA{R: hue, G: shade, B: 255 - hue, A: 255}
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return images.EncodeDataURI(buf.Bytes(), "image/png")
}

var demoEnhancements = []string{
	"Set in a mystical forest where ancient trees whisper secrets and magical creatures roam freely under moonlit skies.",
	"The story unfolds in a bustling steampunk city where clockwork inventions and steam-powered machines create a world of endless possibilities.",
	"Taking place in a coastal town where the ocean holds mysteries and every sunset brings new adventures waiting to be discovered.",
	"Set in a library that exists between dimensions, where books contain living worlds and stories have the power to change reality.",
	"The adventure begins in a floating castle above the clouds, where sky pirates and wind dancers navigate between floating islands.",
}

type cannedChapter struct {
	title       string
	text        string
	imagePrompt string
	hue         uint8
}

type cannedStory struct {
	title    string
	genre    domain.Genre
	audience domain.Audience
	chapters []cannedChapter
}

var cannedStories = []cannedStory{
	{
		title:    "Luna and the Crystal Dragon",
		genre:    domain.GenreFantasy,
		audience: domain.AudienceChildren,
		chapters: []cannedChapter{
			{
				title:       "The Magical Discovery",
				text:        "Luna was playing in her grandmother's garden when she found a glowing crystal hidden under the old oak tree. The crystal was warm to the touch and sparkled with colors she had never seen before. As she held it up to the sunlight, a tiny voice whispered, 'Help me, please!' Luna looked around but saw no one. The voice was coming from inside the crystal!",
				imagePrompt: "A young girl finding a glowing crystal in a magical garden",
				hue:         40,
			},
			{
				title:       "Meeting Sparkle",
				text:        "The crystal began to glow brighter, and suddenly, a miniature dragon no bigger than Luna's hand appeared in a puff of silver smoke. 'I'm Sparkle,' said the dragon, stretching his tiny wings. 'I've been trapped in that crystal for a hundred years!' Luna couldn't believe her eyes. A real dragon! Sparkle explained that an evil wizard had shrunk him and trapped him, and only a kind heart could set him free.",
				imagePrompt: "A tiny silver dragon appearing from a crystal with sparkles of magic",
				hue:         90,
			},
			{
				title:       "The Quest Begins",
				text:        "'To return me to my full size,' Sparkle explained, 'we need to find three magical items: a feather from the Cloud Phoenix, a pearl from the Singing Mermaid, and a flower from the Laughing Tree.' Luna's eyes widened with excitement. This sounded like the greatest adventure ever! 'I'll help you,' she said bravely. 'But how do we find these magical creatures?' Sparkle smiled and pointed his tiny claw toward the sky.",
				imagePrompt: "A girl and tiny dragon looking at a magical map of their quest",
				hue:         140,
			},
			{
				title:       "The Cloud Phoenix",
				text:        "They flew on Sparkle's back (even though he was small, he was still strong enough to carry Luna through the clouds). High above the world, they found the Cloud Phoenix building her nest from wisps of clouds and starlight. 'I will give you a feather,' said the Phoenix in a voice like gentle thunder, 'but first, you must help me find my lost chick who fell into the Storm Cloud.' Luna and Sparkle looked at each other. Another adventure!",
				imagePrompt: "A majestic phoenix made of clouds speaking to a girl and tiny dragon in the sky",
				hue:         190,
			},
			{
				title:       "Friendship Wins",
				text:        "After helping the Phoenix, the Mermaid, and the Laughing Tree, Luna and Sparkle had collected all three magical items. As soon as they brought them together, there was a brilliant flash of light! Sparkle grew back to his proper size - magnificent and beautiful, with scales that shimmered like jewels. 'Thank you, dear friend,' Sparkle said. 'You have the greatest magic of all - a kind and brave heart.' From that day on, Luna and Sparkle had many more adventures together, always helping those in need.",
				imagePrompt: "A girl standing next to a magnificent full-sized dragon in a magical forest clearing",
				hue:         240,
			},
		},
	},
	{
		title:    "The Archivist's Secret",
		genre:    domain.GenreMystery,
		audience: domain.AudienceAdult,
		chapters: []cannedChapter{
			{
				title:       "The Missing Documents",
				text:        "Dr. Sarah Chen had worked at the National Archives for fifteen years, but she'd never seen anything like this. Three separate historical documents from different centuries had vanished overnight, despite the building's state-of-the-art security system. The surveillance footage showed nothing unusual - just empty corridors and locked doors. Yet somehow, between the 11 PM security check and 6 AM opening, the documents had simply disappeared.",
				imagePrompt: "A concerned archivist examining empty document cases in a secure archive",
				hue:         20,
			},
			{
				title:       "The Pattern Emerges",
				text:        "Sarah spent the weekend researching the missing documents. On the surface, they seemed unrelated: a 16th-century land deed, a Civil War soldier's diary, and a 1920s shipping manifest. But as she dug deeper, she discovered something chilling. All three documents contained references to the same geographic coordinates - coordinates that led to a small town that had been abandoned for over fifty years. Someone wanted these specific documents, and they had the resources to breach one of the most secure facilities in the country.",
				imagePrompt: "Documents and maps spread across a desk under lamplight showing mysterious connections",
				hue:         70,
			},
			{
				title:       "The Midnight Visitor",
				text:        "Sarah decided to work late, hoping to catch whoever was behind the thefts. At midnight, she heard footsteps in the archive basement - footsteps that shouldn't exist, as she was supposedly alone in the building. Armed with only her phone's flashlight, she followed the sound downstairs. What she found there would change everything she thought she knew about her workplace. Behind a false wall, someone had built a complete duplicate archive, filled with perfect forgeries of the world's most important historical documents.",
				imagePrompt: "A woman with a flashlight discovering a hidden room full of document forgeries",
				hue:         120,
			},
			{
				title:       "Uncovering the Truth",
				text:        "The forger wasn't a thief - he was a guardian. Sarah met Dr. Marcus Petrov, a former colleague who had faked his own death five years earlier. He revealed that a shadow organization had been systematically stealing and destroying historical documents that revealed inconvenient truths about powerful families and corporations. The missing documents contained evidence of a massive fraud spanning centuries. Marcus had been secretly replacing the originals with forgeries to protect the truth from being erased forever.",
				imagePrompt: "Two people meeting in a secret room surrounded by historical documents and evidence",
				hue:         170,
			},
			{
				title:       "The Guardian's Legacy",
				text:        "Sarah faced an impossible choice: expose the conspiracy and risk her career and safety, or help Marcus continue his secret mission to preserve history. In the end, they found a third way. Working together, they created an encrypted digital archive, hidden in plain sight within the official database. The stolen documents were secretly digitized and distributed to trusted historians worldwide. The shadow organization never realized that their efforts to erase history had only ensured its permanent preservation. Sometimes the greatest mysteries are solved not by revealing secrets, but by protecting them.",
				imagePrompt: "Two archivists working together at computers, preserving digital documents in a secure archive",
				hue:         220,
			},
		},
	},
}
