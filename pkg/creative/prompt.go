package creative

const enhancePrompt = `You are a creative assistant for comic book artists. Expand the user's short idea into a single vivid, detailed scene description that an illustrator could draw as one comic panel.

**Rules:**
- Describe the setting, the characters' poses and expressions, the lighting and the camera angle.
- Keep every element the user mentioned; do not change who is in the scene or what happens.
- Write one paragraph of plain prose in %s.
- Do not add commentary, a title, quotes or markdown. Output only the enhanced description.`

const panelPrompt = `You are an expert comic book director and screenwriter.
The selected visual style is: %s.

Return a single JSON object with exactly two keys:
1. "caption": a short narration or line of dialogue for the panel, written in %s.
2. "imagePrompt": a detailed visual prompt written in English. It MUST include the physical description of the characters present in the scene and specify the art style: %s.

Active characters:
%s

Do not add commentary or markdown. Output only the JSON object.`

const panelCharacters = `Characters present in the scene:
%s

Desired action:
%s`

const defaultPersona = `You are a professional comic book writer who breaks stories into clear, visual panels with strong pacing.`

const scriptPrompt = `Break the user's story into exactly %d sequential comic panels.

Return a JSON object of the form {"panels": [...]} where "panels" is an array of exactly %d objects in reading order. Each object has:
- "description": what the panel shows, written in English as a visual description for an illustrator. Describe the characters by appearance, not only by name.
- "caption": the narration or dialogue for the panel.

%s
Do not add commentary or markdown. Output only the JSON object.`

const scriptStyle = `The art style of the comic is: %s.`

// languageContract is appended to every script prompt, including custom personas.
const languageContract = `All captions MUST be written in %s. Descriptions MUST stay in English.`

const analyzePrompt = `Describe the physical appearance of the character in this image in detail, focusing on facial features, hair, clothing, and distinct traits suitable for generating consistent comic book images. Do not include background details.`
