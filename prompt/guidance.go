package prompt

import "github.com/richinex/tinytales/story"

const baseInstructions = `You are an expert children's book author creating engaging picture book stories.

CRITICAL REQUIREMENTS:
- Use age-appropriate language and themes
- Keep content completely safe and positive
- NO inappropriate words, violence, or scary content
- Focus on friendship, kindness, adventure, and learning
- Create vivid, imaginative scenes perfect for illustrations
- Use simple, clear storytelling that flows naturally when read aloud

STORY FORMAT - VERY IMPORTANT:
Format your response EXACTLY like this:

Title: Your Creative Story Title

Page 1:
First line of text
Second line of text
Optional third line

Page 2:
First line of text
Second line of text
Optional third line

Continue this exact format for all pages.
Each page should be 2-3 lines maximum, perfect for pairing with illustrations.`

// fallbackAge is used when the age group has no guidance entry.
const fallbackAge = story.Age5to7

var ageGuidance = map[story.AgeGroup]string{
	story.Age3to5: `TARGET AUDIENCE: Ages 3-5 years

LANGUAGE GUIDELINES:
- Use simple 1-2 syllable words: cat, dog, run, jump, happy, big, small
- Very short sentences: 4-7 words maximum
- Include repetitive phrases children can remember and say along
- Use lots of action words and gentle sound effects: "splash," "zoom," "giggle"
- Include familiar concepts: colors, shapes, animals, family, home

STORY CONTENT:
- Simple, relatable problems: lost toy, bedtime fears, sharing snacks
- Familiar settings: home, playground, backyard, grandma's house
- Basic emotions clearly expressed: happy, sad, excited, proud
- Include counting opportunities or simple learning moments
- End with comfort, security, and happiness

EXAMPLE STYLE:
"Luna the bunny lost her red ball.
She looked under the big tree.
Where could it be?"`,

	story.Age5to7: `TARGET AUDIENCE: Ages 5-7 years

LANGUAGE GUIDELINES:
- Mix simple and slightly challenging words with context clues
- Sentences of 6-10 words, sometimes longer for variety
- Include descriptive words to build vocabulary: sparkly, enormous, cozy
- Use dialogue between characters to make it engaging
- Can include some rhyming if it flows naturally

STORY CONTENT:
- Small adventures with mild challenges to overcome
- School, neighborhood, or nature settings
- Themes of friendship, trying new things, helping others
- Characters show emotions and growth through the story
- Include problem-solving and decision-making moments
- Gentle life lessons woven naturally into the plot

EXAMPLE STYLE:
"Maya discovered a tiny door behind the old oak tree.
'I wonder who lives there?' she whispered.
She knocked three times and waited."`,

	story.Age7to9: `TARGET AUDIENCE: Ages 7-9 years

LANGUAGE GUIDELINES:
- Use varied vocabulary with some challenging words explained in context
- Longer sentences up to 12-15 words, with good rhythm and flow
- Include more descriptive language and emotional depth
- Can handle more complex sentence structures
- Include dialogue that sounds natural and age-appropriate

STORY CONTENT:
- More complex adventures with meaningful challenges
- Diverse settings: different countries, historical periods, fantasy worlds
- Themes of independence, responsibility, making good choices
- Multiple characters with distinct personalities
- Can include educational elements about science, history, or culture
- Address more complex emotions and social situations
- Stories can have subplots and more detailed character development

EXAMPLE STYLE:
"When Alex found the mysterious map in her grandmother's attic, she knew this summer would be different.
The faded ink showed a path through the Whispering Woods.
'Every great adventure starts with a single step,' Grandma had always said."`,
}

var genreGuidance = map[story.Genre]string{
	story.GenreAdventure:      "Include exciting exploration, discovery of new places, overcoming obstacles with courage and cleverness. Settings can be forests, mountains, caves, or magical lands.",
	story.GenreFantasy:        "Add magical elements like talking animals, fairy helpers, enchanted objects, or friendly wizards. Magic should always be used for good and helping others.",
	story.GenreEducational:    "Naturally weave in learning about numbers, letters, science facts, or interesting information. Make learning feel like discovery and fun exploration.",
	story.GenreFriendship:     "Focus on making new friends, solving friendship problems, learning to share and cooperate, celebrating differences, and showing kindness.",
	story.GenreAnimalStories:  "Feature animals as main characters with human-like qualities but keep some realistic animal behaviors. Include themes about nature and caring for animals.",
	story.GenreMystery:        "Create gentle mysteries appropriate for children - lost items, surprising discoveries, or figuring out simple puzzles. Keep it intriguing but never scary.",
	story.GenreScienceFiction: "Include friendly robots, space adventures, future inventions, or time travel. Keep technology helpful and amazing rather than scary.",
}

const (
	moralLine = "Include a gentle life lesson that emerges naturally from the story."
	rhymeLine = "Try to include some rhyming where it feels natural, but prioritize story flow over forced rhymes."
)

// Requirement phrases joined into the "Please ..." request line.
const (
	moralPhrase    = "include a gentle life lesson"
	dialoguePhrase = "include character conversations"
	rhymePhrase    = "include some rhyming where natural"
)

const formatReminder = "Format the story with clear page markers like 'Page 1', 'Page 2', etc. " +
	"The title should appear on its own line as 'Title: ...'. " +
	"Remember to follow the exact page format specified above!"
