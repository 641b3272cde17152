package prompts

import (
	"fmt"
	"strings"

	"github.com/gaitguard/gaitguard-engine/pkg/models"
)

// CoachingSystemPrompt instructs the coaching model to act as a physical
// therapist and respond with a structured exercise plan.
const CoachingSystemPrompt = `You are an expert physical therapist and movement coach. You receive structured gait analysis observations from a vision AI system and provide personalized corrective exercise plans.

Your role:
1. Interpret the visual gait observations in clinical context.
2. Identify the most likely biomechanical causes for the observed pattern.
3. Design a safe, progressive exercise program targeting the root causes.
4. Provide clear, patient-friendly instructions anyone can follow at home.

Guidelines:
- Always err on the side of caution and recommend seeing a healthcare provider for anything that could indicate a serious condition.
- Exercises should be appropriate for general population fitness levels.
- Include form tips to prevent compensation patterns.
- Provide a realistic timeline for improvement.
- List warning signs that should prompt immediate medical attention.

You MUST respond with a JSON object matching this exact structure:
{
  "explanation": "<plain-language summary of what the gait pattern means>",
  "likely_causes": ["<biomechanical or muscular causes>"],
  "exercises": [
    {
      "name": "<exercise name>",
      "target": "<what muscle/movement it addresses>",
      "instructions": ["<step-by-step instructions>"],
      "sets_reps": "<e.g., 3 sets of 10 reps>",
      "frequency": "<e.g., daily, 3x per week>",
      "form_tips": ["<key form cues to prevent bad habits>"]
    }
  ],
  "timeline": "<expected timeline for noticeable improvement>",
  "warning_signs": ["<red flags that need medical attention>"],
  "immediate_tip": "<one thing they can focus on right now while walking>"
}

Return ONLY the JSON object, no additional text.`

// ConsultationSystemPrompt scopes the conversational coach to movement and
// recovery topics.
const ConsultationSystemPrompt = `You are a friendly physical therapy movement coach chatting with a patient about their gait analysis results and recovery program.

Your role:
1. Answer questions about their movement patterns, exercises, and progress in plain language.
2. Encourage adherence to their prescribed exercise program.
3. Help them understand what their observations mean without alarming them.

Guidelines:
- Stay within the scope of movement, exercise, and general recovery coaching.
- Never diagnose medical conditions or adjust medication. For anything clinical, recommend they talk to their healthcare provider.
- If the patient describes severe pain, numbness, or sudden worsening, tell them to contact their doctor promptly.
- Keep replies short and conversational. This is a chat, not a report.`

// BuildVisionPrompt creates the frame-analysis prompt for the vision model.
// It explains the chronological frame sequence and demands a systematic
// observation pass before classification.
func BuildVisionPrompt(duration float64, frameCount int, timestamps []float64) string {
	times := make([]string, len(timestamps))
	for i, t := range timestamps {
		times[i] = fmt.Sprintf("Frame %d: %.2fs", i+1, t)
	}
	timeList := strings.Join(times, ", ")

	return fmt.Sprintf(`You are given %d sequential frames from a %.1f-second walking video. The frames are provided as separate images in chronological order.

Frame timestamps: %s

Perform a SYSTEMATIC observation across all %d frames before classifying:

1. Stride length: Compare left vs right step distances across frames. Are steps short and shuffling, or long and confident?
2. Arm swing: Look at BOTH arms across all frames. Is arm swing present? Is it reduced or absent on one/both sides? Compare amplitude left vs right.
3. Foot clearance: Do the feet lift clearly off the ground, or do they barely clear/drag?
4. Cadence/rhythm: Based on timestamps, is the stepping rhythm regular or irregular? Are steps quick and small, or slow and deliberate?
5. Stance phase: Which leg bears weight longer? Is there a limp or favoring?
6. Trunk posture: Is the trunk upright, stooped forward, leaning to one side, or rigid?
7. Turning/initiation: Any hesitation or freezing visible in early or late frames?
8. Overall fluidity: Does movement look smooth and coordinated, or stiff and segmented?

Classify the gait pattern based on your observations:
- normal: symmetrical stride, smooth arm swing, upright posture, good foot clearance
- antalgic: shortened stance on painful side, limping, favoring one leg
- trendelenburg: hip drops on unsupported side, trunk lean to compensate
- steppage: exaggerated knee lift, foot slapping, compensating for foot drop
- waddling: wide base, trunk sways side to side, bilateral hip weakness
- parkinsonian: short shuffling steps, reduced or absent arm swing, forward-stooped posture, reduced foot clearance
- hemiplegic: one-sided weakness, leg circumduction, arm held flexed
- scissors: legs cross midline, spastic narrow base

Choose the classification that best matches your systematic observations. Base your decision only on what you see in the frames.

Return ONLY this JSON:
{"gait_type":"<classification>","severity_score":<0-10>,"visual_observations":["<detailed findings from each observation area>"],"left_side_observations":["<left side specifics>"],"right_side_observations":["<right side specifics>"],"asymmetries":["<left-right differences with percentages if possible>"],"postural_issues":["<posture findings>"],"confidence":"<high|medium|low>"}`,
		frameCount, duration, timeList, frameCount)
}

// BuildCoachingUserPrompt formats a vision assessment into the readable
// summary the coaching model receives as the user turn.
func BuildCoachingUserPrompt(analysis *models.VisionAnalysis) string {
	var prompt strings.Builder

	prompt.WriteString("Here are the gait analysis observations from our vision AI system. Please provide a corrective exercise coaching plan based on these findings.\n\n")

	prompt.WriteString("## Gait Classification\n")
	prompt.WriteString(fmt.Sprintf("- Type: %s\n", analysis.GaitType))
	prompt.WriteString(fmt.Sprintf("- Severity: %d/10\n", analysis.SeverityScore))
	prompt.WriteString(fmt.Sprintf("- Confidence: %s\n", analysis.Confidence))

	writeSection(&prompt, "Visual Observations", analysis.VisualObservations)
	writeSection(&prompt, "Left Side Observations", analysis.LeftSideObservations)
	writeSection(&prompt, "Right Side Observations", analysis.RightSideObservations)
	writeSection(&prompt, "Asymmetries", analysis.Asymmetries)
	writeSection(&prompt, "Postural Issues", analysis.PosturalIssues)

	prompt.WriteString("\nBased on these observations, provide a personalized corrective exercise plan as a JSON object.")

	return prompt.String()
}

func writeSection(prompt *strings.Builder, heading string, items []string) {
	prompt.WriteString(fmt.Sprintf("\n## %s\n", heading))
	if len(items) == 0 {
		prompt.WriteString("- none noted\n")
		return
	}
	for _, item := range items {
		prompt.WriteString(fmt.Sprintf("- %s\n", item))
	}
}
