package generator

const translatePrompt = `Translate the following text from Portuguese to English: "%s"`

const buildPromptTemplate = `
Create a creative and well-structured image generation prompt based on these keywords.
Make it descriptive and evocative.

Type: %s
Subject: %s
Style: %s
Details: %s
`

const maskInstruction = `Region Mask: the following black-and-white image has the same dimensions as the Scene Image. ` +
	`Place the product only inside the white area and leave every black area of the scene unchanged.`

const videoPromptInstruction = `You are a creative director for short product videos. Look at the attached image and write a single prompt for a video generation model.
Describe the subject faithfully, then describe subtle, cinematic motion: camera movement (slow push-in, orbit, dolly), lighting changes, and small environmental movement.
Keep it under 80 words. The final output must be ONLY the prompt string itself, without any additional explanation, preamble, or markdown formatting.`

const variationInstruction = `You are a creative director for product photography. You will receive one or more photos of the same product, taken from different angles, and optionally the scene currently used for it.
Write a new, distinctly different image editing prompt that places this exact product in a fresh setting: change the environment, composition, lighting mood, and props, while keeping the product itself perfectly faithful to the photos.
The final output must be ONLY the prompt string itself, without any additional explanation, preamble, or markdown formatting.`

const placementSystemPrompt = `You are a world-class expert in photorealistic digital art and product placement. Your task is to act as a bridge between a user's images and a powerful image editing AI. You will receive one or more 'Product Images' showing the same product from different angles, and a 'Scene Image'. Your job is to generate a highly detailed, expert-level prompt that instructs the editing AI to seamlessly and realistically integrate the product into the scene.

**Your process must be as follows:**

**Step 1: Deep Analysis of the Product Images.**
Before writing the prompt, you must internally analyze and understand the product's core characteristics, combining every angle you were given. Identify:
-   **Primary Material(s):** Is it glass, metal, plastic, ceramic, wood? Be specific (e.g., 'clear ribbed glass', 'brushed aluminum', 'matte white ceramic').
-   **Surface Properties:** Note its texture and finish (e.g., glossy, matte, translucent, reflective, textured, smooth).
-   **Contents:** If the product is a container, what is inside? Describe its properties (e.g., 'viscous, opaque white liquid', 'clear amber fluid', 'empty').
-   **Color and Form:** Note the precise colors and the overall shape and structure of the product.
-   **Inferred Scale:** Based on the object (e.g., lotion dispenser, perfume bottle), what is its likely real-world size?

**Step 2: Generate the Editing Prompt.**
Using your analysis from Step 1, construct a single, cohesive prompt for the editing AI. This prompt must include the following explicit instructions:

1.  **Complete Object Removal:** Start by clearly instructing the AI to **"Completely and entirely remove the [main subject of the scene] from the scene."** Be specific about what to remove.

2.  **Product Reconstruction and Placement:** Instruct the AI to **recreate and place** the product from the 'Product Images' where the original object was. It's crucial to use the word "recreate" to imply a photorealistic rendering, not a simple copy-paste.

3.  **Material-Specific Realism (CRITICAL):** This is the most important part. Based on your analysis, give detailed instructions on how to render the product's materials within the context of the scene.
    -   **Example for Glass/Liquid:** "Recreate the product as a high-fidelity model of a ribbed glass bottle containing a milky, opaque lotion. Render the scene's light realistically refracting through the ribbed glass, showing subtle highlights on the ridges. The internal liquid should appear translucent, catching ambient light softly. Ensure reflections on the glass surface accurately mirror the surrounding environment."
    -   **Example for Metal:** "Recreate the product with a brushed steel texture. Capture the anisotropic reflections characteristic of brushed metal, ensuring they align with the scene's primary light source. Cast soft, realistic contact shadows beneath the product."

4.  **Fidelity and Proportions:** Emphasize that the recreated product must be **extremely faithful** to the original's shape, color, branding, and details. Crucially, render the product at a realistic scale and proportion, similar in size to the object it is replacing.

5.  **Lighting and Shadow Integration:** Explicitly command the AI to integrate the product by matching the scene's lighting (direction, color, temperature, softness) and casting physically accurate shadows and contact occlusion.

The final output must be ONLY the generated prompt string itself, without any additional explanation, preamble, or markdown formatting.`
