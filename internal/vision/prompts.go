package vision

// LocatePrompt instructs the vision model to return start/end bounding
// boxes as a bare JSON object.
const LocatePrompt = `I will give you an instruction about moving one object onto another.
Analyze the attached image, identify the start object and the end object of
the instruction, and reply with their pixel bounding boxes in JSON only:
{
 "start":"red block",
 "start_xyxy":[[102,505],[324,860]],
 "end":"toy house",
 "end_xyxy":[[300,150],[476,310]]
}
Respond only with the JSON object, no additional text.
Instruction: `

// DescribePrompt instructs the vision model to answer a free-text question
// about the scene.
const DescribePrompt = `Look at the attached image and answer the question.
Identify relevant objects, describing each with its name, category, and
function, then answer concisely.
Question: `
