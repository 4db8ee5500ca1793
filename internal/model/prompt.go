package model

// Prompt asks the model for a single guessing strategy. Strategies run as
// Starlark, so the instructions spell out the dialect's differences from Python.
const Prompt = `
    Create a short Wordle strategy function using only native Python code.

    You are given two arrays:
    - letters_board: current letters placed (shape: 6 × 5 (max_attempts x word_length), empty cells are "")
    - status_board: feedback for each letter as integers:
        0 = empty cell
        1 = letter not in word
        2 = letter in word but wrong position
        3 = letter in correct position

    The function should:
    1. Take letters_board and status_board as input.
    2. Decide the next valid 5-letter word based on the current board state.
    3. You should avoid using a fixed list of words. Instead, your strategy can sample letters from the English alphabet and adapt guesses to the current board and feedback.
    4. Output only the next word as a 5-letter uppercase string.

    The code runs in a restricted Python dialect:
    - Only the "random" and "string" modules are available. Do not import anything else.
    - Strings are not iterable: use s.elems() to loop over characters.
    - No classes, no try/except, no global variable reassignment.

    Output ONLY your new short function called ` + "`strategy`" + ` in backticks using the format below:
    ` + "```python" + `
    def strategy(letters_board, status_board):
        # your code
    ` + "```" + `
    All helper functions and modules import should be inside ` + "`def strategy`" + `. Only output the short function ` + "`strategy`" + `.
    DO NOT add any text before or after the function.
`
