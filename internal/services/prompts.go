// internal/services/prompts.go
package services

import (
	"fmt"
	"strings"

	"scenario-builder/internal/models"
)

// System prompts for the three text stages.
const (
	systemPromptGeneral = "You are a helpful assistant that follows the provided task instructions carefully."

	systemPromptMetadata = "You are an expert educational content designer. Generate scenario metadata in valid JSON format."

	systemPromptScreens = "You are an expert instructional designer and learning experience designer who creates short, " +
		"realistic, and motivating learning scenarios for higher education and professional audiences. Each scenario " +
		"should connect the key concept to real-world practice, reflect the learners' context, and feel authentic to " +
		"their field. Generate screen content in valid JSON format."

	designerPreamble = "You are an expert instructional designer and learning experience designer who creates short, " +
		"realistic, and motivating learning scenarios for higher education and professional audiences. Each scenario " +
		"should connect the key concept to real-world practice, reflect the learners' context, and feel authentic to " +
		"their field."

	exampleScenarioSummary = "safeChats is a fast-growing social media platform with active users worldwide. " +
		"Their Trust and Safety team needs help strengthening content moderation systems and reducing costs. " +
		"Currently, they use traditional sentiment analysis that flags posts as hate speech or not, but provides " +
		"no explanations. Users complain about unfair flagging, and human reviewers spend extra time interpreting " +
		"decisions. Their system also performs poorly in other languages. They're exploring Generative AI and LLMs " +
		"because these can understand context, sarcasm, and nuance in multiple languages, explain reasoning in " +
		"natural language, suggest better moderation responses, and continuously improve through feedback loops."
)

func contextInputsBlock(projectContext *models.ProjectContext) string {
	return fmt.Sprintf(`Inputs:
- Course: %s
- Course Description: %s
- Professional Domain: %s
- Module Description: %s
- Key Concept or Learning Objective: %s
- Learners' Existing Knowledge: %s
- Additional Information: %s`,
		projectContext.Course.CourseTitle,
		projectContext.Course.CourseDescription,
		projectContext.Audience.ProfessionalDomain,
		projectContext.Project.ModuleTitle,
		projectContext.Project.KeyConcept,
		projectContext.Project.ExistingChallenge,
		projectContext.AdditionalInfo)
}

// buildScenarioPrompt asks for exactly three candidate summaries, each
// introduced by a "SCENARIO n:" marker the parser keys on.
func buildScenarioPrompt(projectContext *models.ProjectContext) string {
	return fmt.Sprintf(`%s

Using the information below, generate exactly 3 short scenario summaries (2-3 sentences each) that will help learners see the relevance and value of this concept or skill.
%s

Your task:

Create 3 distinct scenario summaries that:
1. Are realistic and relevant to the learner profile and course context.
2. Clearly illustrate how the key concept or skill applies in practice.
3. Present a situation or challenge that encourages critical thinking or decision-making.
4. Use authentic, inclusive examples (diverse names, roles, and settings).
5. Specify a clear setting or context (e.g., workplace, community, field site, research team, or organizational meeting).
6. Feel motivating and purposeful so learners understand why the skill or concept matters.

Format your response as:
SCENARIO 1: [summary with realistic context, diverse characters, and clear challenge]
SCENARIO 2: [summary with realistic context, diverse characters, and clear challenge]
SCENARIO 3: [summary with realistic context, diverse characters, and clear challenge]

IMPORTANT: Each scenario must:
- Be written in plain, professional language suitable for higher education or adult learners.
- Keep the tone practical, motivational, and grounded in real-world settings.
- Avoid jargon or overly academic phrasing.
- Focus on what is happening and why it matters, not on lengthy backstories or character details.

Example of a suitable scenario summary:
%s`, designerPreamble, contextInputsBlock(projectContext), exampleScenarioSummary)
}

// buildRefinePrompt rewrites the current scenario text according to free-form
// instructions. The reply must be the bare scenario text only.
func buildRefinePrompt(projectContext *models.ProjectContext, currentScenario, instructions string) string {
	return fmt.Sprintf(`%s

Based on the following inputs, update the current scenario according to the update instructions:
Current scenario: %s
Update instructions: %s

%s

Scenarios should
1. Be realistic and relevant to the learner profile and course context.
2. Clearly illustrate how the key concept or skill applies in practice.
3. Present a situation or challenge that encourages critical thinking or decision-making.
4. Use authentic, inclusive examples (diverse names, roles, and settings).
5. Specify a clear setting or context (e.g., workplace, community, field site, research team, or organizational meeting).
6. Feel motivating and purposeful so learners understand why the skill or concept matters.
7. Be 2-3 sentences long. Do not add any other text or formatting.

CRITICAL: Your response must contain ONLY the scenario text. No prefixes, no labels, no metadata, no explanations, just the scenario itself.

Example of correct format:
%s`, designerPreamble, currentScenario, instructions, contextInputsBlock(projectContext), exampleScenarioSummary)
}

// buildMetadataPrompt asks for strict JSON with screen count, aspect ratio
// and the actor list.
func buildMetadataPrompt(projectContext *models.ProjectContext, finalScenario string) string {
	return fmt.Sprintf(`You are an instructional scenario designer. Based on the scenario description, extract key visual and narrative metadata.

Scenario: %s

Course: %s
Module: %s

Your task:
1. Determine how many visual screens are needed to convey the scenario effectively (usually between 3 and 7).
2. Recommend the most suitable aspect ratio for these screens (e.g., 16:9, 9:16, 1:1) based on the learning context.
3. Identify the main character:
   - Include name, role or title, and a clear explanation of their objective and decision-making context in the scenario.
4. Identify any side or supporting characters (only if they contribute meaningfully to the scenario's progression). There should be either 0 or 1 supporting character:
   - Include name, role or title, and a concise explanation of how they interact with or influence the main character's goal.
5. For each character, provide a brief visual appearance description to ensure visual consistency across images. IMPORTANT: Characters should be diverse in terms of ethnicity, gender, age, and other characteristics. Avoid stereotypes and ensure representation reflects real-world diversity.

Output strictly in JSON format:
{
  "num_screens": <integer>,
  "aspect_ratio": "<string>",
  "actors": [
    {
      "name": "<string>",
      "role": "<string>",
      "purpose": "<describe what they are trying to accomplish and how their actions or perspective drive the scenario forward>",
      "appearance": "<brief visual description including age, ethnicity, gender, and distinctive features. Ensure diversity>"
    },
    {
      "name": "<string>",
      "role": "<string>",
      "purpose": "<describe how this supporting character enables, challenges, or informs the main character's decisions>",
      "appearance": "<brief visual description including age, ethnicity, gender, and distinctive features. Ensure diversity>"
    }
  ]
}`, finalScenario, projectContext.Course.CourseTitle, projectContext.Project.ModuleTitle)
}

// buildScreensPrompt asks for the full screen list as JSON, paced over the
// five-beat story arc.
func buildScreensPrompt(projectContext *models.ProjectContext, finalScenario string, metadata *models.ScenarioMetadata) string {
	actorLines := make([]string, 0, len(metadata.Actors))
	for _, actor := range metadata.Actors {
		actorLines = append(actorLines, fmt.Sprintf("- %s (%s): %s", actor.Name, actor.Role, actor.Purpose))
	}
	actorsStr := strings.Join(actorLines, "\n")
	if actorsStr == "" {
		actorsStr = "No actors are needed for this scenario."
	}

	keyConcept := projectContext.Project.KeyConcept

	return fmt.Sprintf(`%s

Goal: Create %d sequential screens that visually tell the story described below. The PRIMARY focus should be on clearly depicting and reinforcing the learning objective: %s. Each screen should directly connect to how this concept is applied, learned, or demonstrated in the scenario.

Story Arc:
Follow the traditional story structure of:
1. Beginning: introduce the context, characters, and the inciting incident that sets the story in motion.
2. Rising Action: build tension or challenge as the main event or conflict unfolds.
3. Climax: present the turning point or key decision moment.
4. Falling Action: show the outcome or consequence of that moment.
5. Resolution: end with an insight, learning, or call to action that ties back to the learning goal.

Scenario:
%s

Actors:
%s

Course: %s
Module: %s

Guidelines:
1. Each screen should advance the story in a logical and emotionally engaging way, aligned with the storytelling arc above.
2. Write image_description as if it will be sent directly to a generative image model. Use vivid, cinematic visual language that describes:
   - The setting, mood, and lighting
   - Character expressions, gestures, and positions
   - Relevant props, backgrounds, and atmosphere
3. Avoid elements that generative AI renders poorly:
   - No text, labels, symbols, or charts
   - No diagrams, models, mockups, graphs, or technical visualizations
   - No complex abstractions (e.g., metaphors, irony, conceptual visuals)
   - Focus ONLY on scenes, people, environments, and objects that can be realistically photographed or illustrated
   - Instead of mentioning character names, keep the focus of image generation on the character visual.
4. Write caption as a short motivational or descriptive text that connects the visual to the story and learning objective.
   - Keep captions natural, concise, and meaningful.

Learning Objective Focus:
- Each screen should prioritize showing the learning objective in action, not just character interactions.
- Focus on the conceptual understanding, problem-solving, or skill demonstration related to: %s
- Character interactions should serve to illustrate the learning objective, not be the main focus.

Storytelling Best Practices:
- Maintain tone consistency across all screens (same mood, pacing, and style).
- Use human-centered details (body language, environment, emotion) to make the story relatable.
- End with insight or resolution that ties directly back to the learning objective.

Format as JSON:
{
  "screens": [
    {"screen_number": 1, "image_description": "", "caption": ""},
    {"screen_number": 2, "image_description": "", "caption": ""}
  ]
}`,
		designerPreamble,
		metadata.NumScreens,
		keyConcept,
		finalScenario,
		actorsStr,
		projectContext.Course.CourseTitle,
		projectContext.Project.ModuleTitle,
		keyConcept)
}

// buildImagePrompt composes the prompt for one screen's image. The previous
// screen's description and every actor appearance are appended verbatim so
// consecutive frames stay visually consistent.
func buildImagePrompt(screens []models.Screen, index int, metadata *models.ScenarioMetadata) string {
	description := screens[index].ImageDescription

	prevContext := ""
	if index > 0 {
		if prevDesc := screens[index-1].ImageDescription; prevDesc != "" {
			prevContext = fmt.Sprintf(" Previous screen context for visual consistency: %s. ", prevDesc)
		}
	}

	appearances := make([]string, 0, len(metadata.Actors))
	for _, actor := range metadata.Actors {
		if actor.Appearance != "" {
			appearances = append(appearances, fmt.Sprintf("%s: %s", actor.Name, actor.Appearance))
		}
	}
	actorContext := ""
	if len(appearances) > 0 {
		actorContext = fmt.Sprintf(" Character appearances for consistency: %s.", strings.Join(appearances, ". "))
	}

	return fmt.Sprintf("%s%s%s Style: %s. Aspect ratio: %s.",
		description, prevContext, actorContext, metadata.VisualStyle, metadata.AspectRatio)
}
