package server

import "math/rand/v2"

// builtinWords is the default target pool: common household objects a player
// can plausibly grab and photograph within a round.
var builtinWords = []string{
	// Stationery
	"pen", "pencil", "book", "paper", "notebook", "ruler", "eraser", "marker",
	"crayon", "scissors", "tape", "glue", "stapler", "paperclip", "rubber band",
	"sticker", "envelope", "stamp", "card", "photo",
	// Kitchen
	"spoon", "fork", "knife", "plate", "bowl", "cup", "mug", "glass", "bottle",
	"can", "apple", "banana", "orange", "cookie", "bread", "egg", "salt",
	"pepper", "napkin", "tissue",
	// Clothing and accessories
	"shoe", "sock", "shirt", "hat", "cap", "glove", "scarf", "belt", "tie",
	"watch", "glasses", "sunglasses", "ring", "necklace", "bracelet", "earring",
	"wallet", "purse", "bag", "backpack",
	// Personal care
	"toothbrush", "toothpaste", "soap", "shampoo", "brush", "comb", "mirror",
	"towel", "lotion", "perfume", "deodorant", "razor", "nail clipper",
	"lipstick", "cream", "bandaid", "medicine",
	// Electronics
	"phone", "remote", "headphones", "charger", "mouse", "keyboard", "cable",
	"battery", "flashlight", "calculator", "camera", "usb", "speaker",
	"microphone", "earbuds", "tablet", "laptop",
	// Toys and games
	"ball", "toy", "doll", "puzzle", "dice", "coin", "marble", "yo-yo",
	"blocks", "lego", "action figure", "stuffed animal", "balloon", "kite",
	"frisbee", "jump rope",
	// Office and school
	"folder", "binder", "clipboard", "calendar", "planner", "highlighter",
	"chalk", "pushpin", "thumbtack",
	// Tools
	"hammer", "screwdriver", "wrench", "nail", "screw", "key", "lock",
	"tape measure", "level",
	// Bathroom
	"container", "jar", "tube", "spray bottle", "cotton ball", "q-tip",
	"tweezers", "nail file",
	// Bedroom
	"pillow", "blanket", "sheet", "pillowcase", "alarm clock", "lamp",
	"candle", "picture frame", "magazine",
	// Kitchen utensils
	"spatula", "whisk", "ladle", "tongs", "can opener", "bottle opener",
	"measuring cup", "timer", "oven mitt", "pot holder",
	// Cleaning
	"sponge", "cloth", "paper towel", "dustpan", "bucket", "mop", "broom",
	// Art supplies
	"paint", "paintbrush", "colored pencil", "charcoal", "canvas",
	"sketchbook", "palette", "easel", "frame",
	// Garden
	"flower", "plant", "seed", "watering can", "pot", "soil",
	// Sports
	"racket", "bat", "helmet", "water bottle", "whistle", "stopwatch", "medal",
	// Food
	"cereal", "milk", "juice", "soda", "coffee", "tea", "sugar", "honey",
	"jam", "peanut butter", "crackers", "chips", "candy", "chocolate", "gum",
	"mint", "lemon", "lime", "grape",
	// Miscellaneous
	"box", "basket", "stick", "string", "rope", "wire", "chain", "hook",
	"clip", "pin", "button", "zipper", "magnet",
}

// pickWord draws the next round's word. Custom words are preferred for the
// first two rounds so a five-round game is guaranteed to see them; within a
// game no word repeats until the combined pool is exhausted, at which point
// the used set resets and repeats are allowed.
func pickWord(r *Room) string {
	available := availableWords(r)
	if len(available) == 0 {
		r.UsedWords = make(map[string]struct{})
		available = availableWords(r)
	}

	var word string
	if r.Round <= 2 && len(r.CustomWords) > 0 {
		custom := make([]string, 0, len(r.CustomWords))
		for _, candidate := range r.CustomWords {
			if _, used := r.UsedWords[candidate]; !used {
				custom = append(custom, candidate)
			}
		}
		if len(custom) > 0 {
			word = custom[rand.IntN(len(custom))]
		}
	}
	if word == "" {
		word = available[rand.IntN(len(available))]
	}
	r.UsedWords[word] = struct{}{}
	return word
}

func availableWords(r *Room) []string {
	pool := make([]string, 0, len(builtinWords)+len(r.CustomWords))
	seen := make(map[string]struct{}, len(builtinWords)+len(r.CustomWords))
	for _, word := range builtinWords {
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		pool = append(pool, word)
	}
	for _, word := range r.CustomWords {
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		pool = append(pool, word)
	}
	available := pool[:0]
	for _, word := range pool {
		if _, used := r.UsedWords[word]; !used {
			available = append(available, word)
		}
	}
	return available
}
