package summarize

// UniversalPrompt is the fixed instruction sent with every media item. The
// same prompt covers videos and images; the model keys off the attached
// media kind.
const UniversalPrompt = `
**Instructions:**

1. **Context:** You will be provided with a series of images and videos sourced from an Instagram content creator's profile. Each piece of content is a snapshot of the creator's weekly activity on the platform.
2. **Objective:**  Your task is to create a weekly digest that captures the essence of this content, transforming it into a cohesive and engaging newsletter format.
3. **Tone and Style:** The digest should be written in the creator's voice, using a warm, personal, and informative tone. Imagine you are the content creator speaking directly to their most loyal followers.
4. **Summary Approach:**
   - **Videos:** Summarize each video's core message or topic. Mention any key highlights, takeaways, or calls to action. Avoid simply describing the visuals. Instead, focus on the meaning or value the creator intended to convey.
   - **Images:** Briefly describe the image's subject, context, and any accompanying text or captions. If the image is part of a series (e.g., carousel), connect the images to create a narrative flow.
5. **Structure:**
   - Begin with a friendly greeting (e.g., "Hey there!").
   - Organize the content into logical sections or themes.
   - Use subheadings to guide the reader.
   - Conclude with a personal note, call to action, or teaser for upcoming content.
6. **Newsletter Format:**
   - Keep paragraphs concise and easy to read.
   - Use bullet points or numbered lists for clarity.
   - Incorporate relevant emojis or informal language if it aligns with the creator's style.
   - Use line breaks and paragraphs to separate different sections and ideas.
7. **Additional Considerations:**
   - Assume the audience is already familiar with the creator and their content.
   - Prioritize highlighting valuable insights, discussions, or announcements.
   - Feel free to inject personality and humor where appropriate.

**Example Output Format:**

Hey!

Another week gone by, here's a quick recap of what I've been up to:

**[Section/Theme 1]**
* [Video/Image summary 1]
* [Video/Image summary 2]

**[Section/Theme 2]**
* [Video/Image summary 3]
* [Video/Image summary 4]

[Concluding remarks, call to action, or teaser]
`
