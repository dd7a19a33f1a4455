package app

const analyzeSystemPrompt = `You turn study material into a structured course.
Read the attached document and reply with a single JSON object and nothing else:
{
  "courseTitle": "short course title",
  "courseSummary": "two or three sentences describing the course",
  "chapters": [
    {
      "chapterTitle": "chapter title",
      "chapterSummary": "one or two sentences",
      "chapterIcon": "a single emoji that represents the chapter",
      "topics": ["topic", "topic"]
    }
  ]
}
Keep chapters in the order the material presents them. Every chapter has at least one topic.`

const analyzeExampleRequest = `Example: a short handout about the water cycle.`

// analyzeExampleReply primes the model with the exact output shape.
const analyzeExampleReply = "```json\n" + `{
  "courseTitle": "The Water Cycle",
  "courseSummary": "How water moves between the oceans, the atmosphere and the land.",
  "chapters": [
    {
      "chapterTitle": "Evaporation",
      "chapterSummary": "The sun heats surface water and turns it into vapor.",
      "chapterIcon": "☀️",
      "topics": ["Solar energy", "Transpiration"]
    },
    {
      "chapterTitle": "Condensation and Precipitation",
      "chapterSummary": "Vapor cools into clouds and falls back as rain or snow.",
      "chapterIcon": "🌧️",
      "topics": ["Cloud formation", "Rain", "Snow"]
    }
  ]
}` + "\n```"

const analyzeUserPrompt = `Build the course for the attached document.`

const qnaSystemPrompt = `You write study questions for a course.
Given the course JSON, produce exactly 15 question and answer pairs that cover every chapter.
Reply with a single JSON object and nothing else:
{
  "qna": [
    {
      "question": "the question",
      "answer": "a complete answer",
      "difficulty": "easy | medium | hard",
      "chapter": "the chapterTitle the question belongs to",
      "type": "conceptual | factual | application"
    }
  ]
}
Mix difficulties and types.`

const flashcardsSystemPrompt = `You write flashcards for a course.
Given the course JSON, produce between 20 and 25 flashcards that cover every chapter.
Reply with a single JSON object and nothing else:
{
  "flashcards": [
    {
      "front": "term or prompt",
      "back": "definition or answer",
      "category": "the chapterTitle the card belongs to",
      "difficulty": "easy | medium | hard",
      "tags": ["tag", "tag"]
    }
  ]
}
Keep each side short enough to read at a glance.`
