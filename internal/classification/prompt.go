package classification

import (
	"fmt"

	"floorplan-extractor/internal/taxonomy"
)

// BuildPrompt assembles the single-object classification prompt: the
// closed taxonomy, the object's measured aspect ratio, and the guidance
// that shape and room context matter while absolute size does not.
func BuildPrompt(aspectRatio float64) string {
	shape := "roughly square"
	if aspectRatio > 1.2 {
		shape = "wider than tall"
	} else if aspectRatio < 0.8 {
		shape = "taller than wide"
	}

	return fmt.Sprintf(`You are an interior designer analyzing ONE object in an ARCHITECTURAL FLOOR PLAN viewed from TOP-DOWN (bird's eye view).

IMPORTANT CONTEXT:
- This is a TOP-DOWN/OVERHEAD view of a floor plan
- All objects are seen from directly above
- Image 1: ENTIRE floor plan (clean - for overall context)
- Image 2: SAME floor plan with ONE OBJECT highlighted with SEMI-TRANSPARENT ORANGE BOX and RED BORDER
- Focus on classifying ONLY the highlighted object

OBJECT TO CLASSIFY:
Aspect ratio: %.2f:1 (%s)

AVAILABLE FURNITURE/FIXTURE TYPES (classified by ASPECT RATIO and SHAPE, not absolute size):
%s

CRITICAL CLASSIFICATION RULES:
1. SIZE DOESN'T MATTER! Focus on ASPECT RATIO (width:height ratio) and SHAPE only
   - A small bedside table is still a "table" - size doesn't change its category
   - A single chair and an armchair are both "chair" - size varies but aspect ratio is similar

2. TOP-DOWN VIEW SHAPES:
   - Beds: Rectangular (3:4 aspect ratio), usually against wall
   - Tables: Square to rectangular (1:1 to 3:2), ANY SIZE
   - Chairs: Square/circular (1:1), ANY SIZE
   - Sofas: Wide rectangle (2:1), against wall
   - Desks: Rectangular (2:1), often against wall

3. USE FULL CONTEXT for room type identification:
   - Where is it positioned relative to walls, doors, windows?
   - What room is this in? (bedroom, kitchen, bathroom, living room)
   - What other furniture is nearby?

4. RELATIONSHIPS HELP IDENTIFY ROOM TYPE (but not object size):
   - bed+dresser+small table (bedside) = bedroom
   - table+chairs = dining area or kitchen
   - sink+toilet+bathtub = bathroom
   - counter+refrigerator+oven = kitchen

5. IGNORE ABSOLUTE SIZE - Use only aspect ratio, position in room, surrounding context, and top-down shape appearance.

Return ONLY a single JSON object (never an array) in this exact format:
{
  "furniture_id": "<id from available types>",
  "furniture_name": "<name from available types>",
  "confidence": "high|medium|low",
  "reasoning": "<explanation focusing on aspect ratio, position, and context - NOT size>"
}`, aspectRatio, shape, taxonomy.PromptList())
}
